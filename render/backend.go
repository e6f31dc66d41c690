package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wfunc/fleetview/config"
)

var ErrClosed = errors.New("backend closed")

// Backend draws frames. Draw is called from the client loop only.
type Backend interface {
	Draw(f *Frame) error
	Close() error
}

// Controls receives input from interactive backends. Implementations must
// be safe to call from the backend's input goroutine.
type Controls interface {
	Move(dx, dy float64)
	// Submit answers the name prompt. An empty name keeps the current one.
	Submit(name string)
	Quit()
}

// New builds the backend cfg names.
func New(cfg config.RenderConfig, width, height float64, controls Controls) (Backend, error) {
	switch cfg.Backend {
	case config.BackendNone, "":
		return None{}, nil
	case config.BackendPNG:
		return NewPNG(int(width), int(height), cfg.OutputDir, cfg.Every)
	case config.BackendTerminal:
		return NewTerminal(controls)
	}
	return nil, fmt.Errorf("render: unknown backend %q", cfg.Backend)
}

// None discards frames.
type None struct{}

func (None) Draw(*Frame) error { return nil }
func (None) Close() error      { return nil }

var fallbackColor = colorful.Color{R: 0.6, G: 0.6, B: 0.6}

// parseColor reads a server color; anything unparsable is grey.
func parseColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallbackColor
	}
	return c
}

func rgba(s string, alpha float64) color.NRGBA {
	r, g, b := parseColor(s).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha * 255)}
}
