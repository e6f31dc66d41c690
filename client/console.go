package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wfunc/fleetview/logger"
)

// Commander is what console lines drive.
type Commander interface {
	Join(name string) error
	Move(dx, dy float64)
	Rename(name string) error
	Respawn(name string)
	Quit()
}

const consoleHelp = "commands: join <name> | move <dx> <dy> | rename <name> | respawn [name] | quit"

// RunConsole reads one command per line from r until EOF or quit.
func RunConsole(r io.Reader, cmd Commander) error {
	logger.Log.Info(consoleHelp)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		quit, err := execLine(cmd, text)
		if err != nil {
			logger.Log.Warnf("%v", err)
			continue
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func execLine(cmd Commander, line string) (bool, error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "join":
		return false, cmd.Join(rest)
	case "move":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: move <dx> <dy>")
		}
		dx, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return false, fmt.Errorf("move: bad dx %q", fields[0])
		}
		dy, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return false, fmt.Errorf("move: bad dy %q", fields[1])
		}
		cmd.Move(dx, dy)
	case "rename":
		return false, cmd.Rename(rest)
	case "respawn":
		cmd.Respawn(rest)
	case "quit", "exit":
		cmd.Quit()
		return true, nil
	case "help":
		logger.Log.Info(consoleHelp)
	default:
		return false, fmt.Errorf("unknown command %q (%s)", verb, consoleHelp)
	}
	return false, nil
}
