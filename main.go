package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/wfunc/fleetview/client"
	"github.com/wfunc/fleetview/config"
	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/monitor"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	configDir, _ := flags.GetString("config")

	// Load configuration
	cfg, err := config.LoadConfig(configDir, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger; the terminal backend owns the screen
	var outputs []string
	if cfg.Render.Backend == config.BackendTerminal {
		outputs = []string{"fleetview.log"}
	}
	if err := logger.Init(cfg.Log.Level, outputs...); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mon := monitor.NewMonitor("fleetview")
	if cfg.Monitor.Address != "" {
		mon.StartServer(cfg.Monitor.Address)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = mon.Shutdown(ctx)
		}()
	}

	c, err := client.New(cfg, client.Options{Monitor: mon})
	if err != nil {
		logger.Log.Fatalf("Failed to create client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Render.Backend != config.BackendTerminal {
		go func() {
			if err := client.RunConsole(os.Stdin, c); err != nil {
				logger.Log.Warnf("Console stopped: %v", err)
			}
		}()
	}

	logger.Log.Infof("Starting fleetview against %s", cfg.Server.URL)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Errorf("Client stopped: %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Log.Info("Bye")
}
