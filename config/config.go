package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Minimap  MinimapConfig  `mapstructure:"minimap"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Render   RenderConfig   `mapstructure:"render"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Items    ItemsConfig    `mapstructure:"items"`
	Input    InputConfig    `mapstructure:"input"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	URL       string        `mapstructure:"url"`
	Name      string        `mapstructure:"name"`
	Heartbeat time.Duration `mapstructure:"heartbeat"`
}

type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

type MinimapConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// CameraConfig selects a zoom preset. Non-zero K, ZoomMin, ZoomMax or
// Baseline override the preset's value.
type CameraConfig struct {
	Variant  string  `mapstructure:"variant"`
	K        float64 `mapstructure:"k"`
	ZoomMin  float64 `mapstructure:"zoom_min"`
	ZoomMax  float64 `mapstructure:"zoom_max"`
	Baseline float64 `mapstructure:"baseline"`
}

type RenderConfig struct {
	Backend   string `mapstructure:"backend"`
	FPS       int    `mapstructure:"fps"`
	OutputDir string `mapstructure:"output_dir"`
	Every     int    `mapstructure:"every"`
}

type ChatConfig struct {
	Window   time.Duration `mapstructure:"window"`
	MaxLines int           `mapstructure:"max_lines"`
}

type ItemsConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	CollectRadius float64       `mapstructure:"collect_radius"`
}

type InputConfig struct {
	MoveRate  float64 `mapstructure:"move_rate"`
	MoveBurst int     `mapstructure:"move_burst"`
}

type CleanupConfig struct {
	NameHeuristic bool `mapstructure:"name_heuristic"`
}

type MonitorConfig struct {
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	BackendNone     = "none"
	BackendPNG      = "png"
	BackendTerminal = "term"
)

var ErrInvalidConfig = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "ws://localhost:5000/ws")
	v.SetDefault("server.name", "")
	v.SetDefault("server.heartbeat", 10*time.Second)

	v.SetDefault("viewport.width", 1280)
	v.SetDefault("viewport.height", 720)

	v.SetDefault("minimap.width", 150)
	v.SetDefault("minimap.height", 112)

	v.SetDefault("camera.variant", "gentle")

	v.SetDefault("render.backend", BackendNone)
	v.SetDefault("render.fps", 30)
	v.SetDefault("render.output_dir", "frames")
	v.SetDefault("render.every", 30)

	v.SetDefault("chat.window", 5*time.Second)
	v.SetDefault("chat.max_lines", 50)

	v.SetDefault("items.ttl", 30*time.Second)
	v.SetDefault("items.collect_radius", 30)

	v.SetDefault("input.move_rate", 20)
	v.SetDefault("input.move_burst", 5)

	v.SetDefault("cleanup.name_heuristic", false)

	v.SetDefault("monitor.address", "")

	v.SetDefault("log.level", "info")
}

// Flags returns the command line overrides understood by LoadConfig.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fleetview", pflag.ContinueOnError)
	fs.String("server", "", "game server websocket url")
	fs.String("name", "", "join immediately with this name")
	fs.String("backend", "", "render backend: none, png or term")
	fs.String("camera", "", "camera preset: gentle, medium or wide")
	fs.String("monitor", "", "debug http listen address")
	fs.String("log-level", "", "log level")
	fs.String("config", ".", "directory holding config.yaml")
	return fs
}

var flagKeys = map[string]string{
	"server":    "server.url",
	"name":      "server.name",
	"backend":   "render.backend",
	"camera":    "camera.variant",
	"monitor":   "monitor.address",
	"log-level": "log.level",
}

// LoadConfig reads config.yaml from path (optional), FLEETVIEW_* environment
// variables and, when fs is not nil, the flags it carries.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FLEETVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive", ErrInvalidConfig)
	}
	if c.Minimap.Width <= 2 || c.Minimap.Height <= 2 {
		return fmt.Errorf("%w: minimap must be larger than its border", ErrInvalidConfig)
	}
	switch c.Render.Backend {
	case BackendNone, BackendPNG, BackendTerminal:
	default:
		return fmt.Errorf("%w: unknown render backend %q", ErrInvalidConfig, c.Render.Backend)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("%w: render fps must be positive", ErrInvalidConfig)
	}
	if c.Camera.K < 0 || c.Camera.ZoomMin < 0 || c.Camera.ZoomMax < 0 || c.Camera.Baseline < 0 {
		return fmt.Errorf("%w: camera tuning must not be negative", ErrInvalidConfig)
	}
	if c.Camera.ZoomMin != 0 && c.Camera.ZoomMax != 0 && c.Camera.ZoomMin > c.Camera.ZoomMax {
		return fmt.Errorf("%w: camera zoom_min above zoom_max", ErrInvalidConfig)
	}
	if c.Chat.MaxLines <= 0 {
		return fmt.Errorf("%w: chat max_lines must be positive", ErrInvalidConfig)
	}
	return nil
}
