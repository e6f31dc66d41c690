package view

import (
	"math"

	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/models"
)

// StarLayer is one parallax plane. Stars tile a square of side Span world
// units that scrolls at Parallax times the camera speed.
type StarLayer struct {
	Count    int
	Parallax float64
	Span     float64
	Size     float64
	Alpha    float64
}

var DefaultStarLayers = []StarLayer{
	{Count: 60, Parallax: 0.1, Span: 2000, Size: 1, Alpha: 0.4},
	{Count: 40, Parallax: 0.3, Span: 2000, Size: 1.5, Alpha: 0.6},
	{Count: 20, Parallax: 0.5, Span: 2000, Size: 2, Alpha: 0.9},
}

// Star is a star already placed in screen space.
type Star struct {
	X, Y  float64
	Size  float64
	Alpha float64
}

// seeded is a deterministic pseudo random value in [0, 1).
func seeded(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

// Stars returns the stars of every layer visible through view, projected
// onto a baseW wide screen. Each layer tile repeats until it covers the
// view. The same camera always yields the same stars.
func Stars(layers []StarLayer, v camera.View, baseW float64) []Star {
	scale := 1.0
	if v.W > 0 {
		scale = baseW / v.W
	}
	var out []Star
	for li, layer := range layers {
		if layer.Span <= 0 {
			continue
		}
		camX := v.X * layer.Parallax
		camY := v.Y * layer.Parallax
		for i := 0; i < layer.Count; i++ {
			seed := float64(li*1000 + i + 1)
			wx := seeded(seed) * layer.Span
			wy := seeded(seed*1.7+0.3) * layer.Span

			// wrap into the tile nearest the layer camera
			wx = camX + math.Mod(math.Mod(wx-camX, layer.Span)+layer.Span, layer.Span)
			wy = camY + math.Mod(math.Mod(wy-camY, layer.Span)+layer.Span, layer.Span)

			for tx := wx; tx-camX <= v.W; tx += layer.Span {
				for ty := wy; ty-camY <= v.H; ty += layer.Span {
					out = append(out, Star{
						X:     (tx - camX) * scale,
						Y:     (ty - camY) * scale,
						Size:  layer.Size,
						Alpha: layer.Alpha,
					})
				}
			}
		}
	}
	return out
}

// Line is a world space segment.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// GridLines returns the world grid lines every step units inside both the
// view and the world bounds.
func GridLines(v camera.View, world models.World, step float64) []Line {
	if step <= 0 {
		return nil
	}
	minX := math.Max(0, v.X)
	maxX := math.Min(world.Width, v.X+v.W)
	minY := math.Max(0, v.Y)
	maxY := math.Min(world.Height, v.Y+v.H)
	if minX > maxX || minY > maxY {
		return nil
	}

	var lines []Line
	for x := math.Ceil(minX/step) * step; x <= maxX; x += step {
		lines = append(lines, Line{X1: x, Y1: minY, X2: x, Y2: maxY})
	}
	for y := math.Ceil(minY/step) * step; y <= maxY; y += step {
		lines = append(lines, Line{X1: minX, Y1: y, X2: maxX, Y2: y})
	}
	return lines
}
