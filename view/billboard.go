package view

import (
	"math"

	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/models"
)

// Boundary billboards sit just outside the playfield, like pitch side
// hoardings, and only show while the camera is near an edge.
const (
	BillboardSize   = 100.0
	BillboardGap    = 60.0
	BillboardInset  = 150.0
	BillboardOffset = 20.0
	BillboardMargin = 400.0
	BillboardSlots  = 5

	// billboardCull is how far off screen a panel may start and still be kept.
	billboardCull = 50.0
)

type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// Billboard is one panel in world units. Slot picks the artwork.
type Billboard struct {
	X, Y, W, H float64
	Edge       Edge
	Slot       int
}

// Panel is a billboard projected onto the screen.
type Panel struct {
	Rect
	Edge Edge
	Slot int
}

// NearEdge reports whether the view comes within BillboardMargin of any
// world edge.
func NearEdge(v camera.View, world models.World) bool {
	return v.X < BillboardMargin ||
		v.X+v.W > world.Width-BillboardMargin ||
		v.Y < BillboardMargin ||
		v.Y+v.H > world.Height-BillboardMargin
}

// BillboardLayout places panels along every edge, left and right first, then
// top and bottom. Slots rotate per edge so neighbouring edges differ.
func BillboardLayout(world models.World) []Billboard {
	spacing := BillboardSize + BillboardGap
	slot := func(pos float64, shift int) int {
		return (int(math.Floor(pos/spacing)) + shift) % BillboardSlots
	}

	var out []Billboard
	for y := BillboardInset; y < world.Height-BillboardInset; y += spacing {
		out = append(out, Billboard{
			X: -BillboardSize - BillboardOffset, Y: y,
			W: BillboardSize, H: BillboardSize,
			Edge: EdgeLeft, Slot: slot(y, 0),
		})
	}
	for y := BillboardInset; y < world.Height-BillboardInset; y += spacing {
		out = append(out, Billboard{
			X: world.Width + BillboardOffset, Y: y,
			W: BillboardSize, H: BillboardSize,
			Edge: EdgeRight, Slot: slot(y, 2),
		})
	}
	for x := BillboardInset; x < world.Width-BillboardInset; x += spacing {
		out = append(out, Billboard{
			X: x, Y: -BillboardSize - BillboardOffset,
			W: BillboardSize, H: BillboardSize,
			Edge: EdgeTop, Slot: slot(x, 4),
		})
	}
	for x := BillboardInset; x < world.Width-BillboardInset; x += spacing {
		out = append(out, Billboard{
			X: x, Y: world.Height + BillboardOffset,
			W: BillboardSize, H: BillboardSize,
			Edge: EdgeBottom, Slot: slot(x, 6),
		})
	}
	return out
}

// Billboards returns the panels to draw this frame: none while the camera is
// away from the edges, otherwise every panel that reaches the screen.
func Billboards(world models.World, p Projector) []Panel {
	if !NearEdge(p.View, world) {
		return nil
	}
	var out []Panel
	for _, b := range BillboardLayout(world) {
		sx, sy := p.WorldToScreen(b.X, b.Y)
		sw, sh := p.Length(b.W), p.Length(b.H)
		if sx+sw <= -billboardCull || sx >= p.BaseW+billboardCull ||
			sy+sh <= -billboardCull || sy >= p.BaseH+billboardCull {
			continue
		}
		out = append(out, Panel{Rect: Rect{X: sx, Y: sy, W: sw, H: sh}, Edge: b.Edge, Slot: b.Slot})
	}
	return out
}
