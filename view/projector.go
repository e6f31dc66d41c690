package view

import (
	"math"

	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/models"
)

// Projector maps world coordinates onto the base viewport for one frame.
type Projector struct {
	View  camera.View
	BaseW float64
	BaseH float64
}

func NewProjector(v camera.View, baseW, baseH float64) Projector {
	return Projector{View: v, BaseW: baseW, BaseH: baseH}
}

// Scale is screen pixels per world unit, base / zoomed viewport width.
func (p Projector) Scale() float64 {
	if p.View.W <= 0 {
		return 1
	}
	return p.BaseW / p.View.W
}

func (p Projector) WorldToScreen(x, y float64) (float64, float64) {
	s := p.Scale()
	return (x - p.View.X) * s, (y - p.View.Y) * s
}

func (p Projector) ScreenToWorld(sx, sy float64) (float64, float64) {
	s := p.Scale()
	return sx/s + p.View.X, sy/s + p.View.Y
}

// Length scales a world distance, e.g. a radius.
func (p Projector) Length(l float64) float64 {
	return l * p.Scale()
}

// Visible reports whether a circle of world radius r can touch the screen.
func (p Projector) Visible(x, y, r float64) bool {
	return p.View.Contains(x, y, r)
}

// DirectionTo is the move_player vector from the screen centre, where the
// fleet sits, to a pointer at (sx, sy).
func DirectionTo(sx, sy, baseW, baseH float64) models.MovePlayer {
	return models.MovePlayer{DX: sx - baseW/2, DY: sy - baseH/2}
}

// Minimap projects the whole world onto a small fixed surface. The scale is
// derived from the world size, never from the camera.
type Minimap struct {
	Width, Height float64
	Border        float64
	World         models.World
}

func NewMinimap(w, h float64, world models.World) Minimap {
	return Minimap{Width: w, Height: h, Border: 1, World: world}
}

func (m Minimap) scale() (float64, float64) {
	if m.World.Width <= 0 || m.World.Height <= 0 {
		return 0, 0
	}
	return (m.Width - 2*m.Border) / m.World.Width, (m.Height - 2*m.Border) / m.World.Height
}

func (m Minimap) Project(x, y float64) (float64, float64) {
	sx, sy := m.scale()
	return x*sx + m.Border, y*sy + m.Border
}

// DotRadius is the minimap radius for an entity of world size.
func (m Minimap) DotRadius(size float64) float64 {
	sx, _ := m.scale()
	return math.Max(2, size*sx*0.4)
}

// Rect is an axis aligned rectangle in surface pixels.
type Rect struct {
	X, Y, W, H float64
}

// ViewRect is the main camera's view drawn on the minimap.
func (m Minimap) ViewRect(v camera.View) Rect {
	sx, sy := m.scale()
	return Rect{
		X: v.X*sx + m.Border,
		Y: v.Y*sy + m.Border,
		W: v.W * sx,
		H: v.H * sy,
	}
}
