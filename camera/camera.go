package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/wfunc/fleetview/models"
)

// Variant is one game balance tuning of the zoom curve.
type Variant struct {
	K        float64
	ZoomMin  float64
	ZoomMax  float64
	Baseline float64
}

// Presets observed across game releases. Baselines are for the fleet
// schema; BaselineFor swaps in the size baseline.
var Presets = map[string]Variant{
	"gentle": {K: 0.1, ZoomMin: 1, ZoomMax: 1.5, Baseline: 5},
	"medium": {K: 0.3, ZoomMin: 1, ZoomMax: 2.5, Baseline: 5},
	"wide":   {K: 0.5, ZoomMin: 1, ZoomMax: 3, Baseline: 5},
}

var ErrInvalidVariant = errors.New("invalid camera variant")

const (
	FleetBaseline = 5
	SizeBaseline  = 20
)

// Lookup returns the named preset.
func Lookup(name string) (Variant, error) {
	v, ok := Presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown camera variant %q", name)
	}
	return v, nil
}

// Validate rejects tunings under which Zoom would shrink as the metric grows
// or have no valid range.
func (v Variant) Validate() error {
	switch {
	case v.K < 0:
		return fmt.Errorf("%w: k %v is negative", ErrInvalidVariant, v.K)
	case v.ZoomMin <= 0:
		return fmt.Errorf("%w: zoom_min %v must be positive", ErrInvalidVariant, v.ZoomMin)
	case v.ZoomMin > v.ZoomMax:
		return fmt.Errorf("%w: zoom_min %v above zoom_max %v", ErrInvalidVariant, v.ZoomMin, v.ZoomMax)
	case v.Baseline <= 0:
		return fmt.Errorf("%w: baseline %v must be positive", ErrInvalidVariant, v.Baseline)
	}
	return nil
}

// BaselineFor returns v with the default baseline of schema s, unless the
// baseline was set explicitly away from the fleet default.
func (v Variant) BaselineFor(s models.Schema) Variant {
	if s == models.SchemaSizeBased && v.Baseline == FleetBaseline {
		v.Baseline = SizeBaseline
	}
	return v
}

// Zoom maps a progression metric to a zoom factor in [ZoomMin, ZoomMax].
// It never decreases as metric grows.
func (v Variant) Zoom(metric float64) float64 {
	if math.IsNaN(metric) || metric < 0 || v.Baseline <= 0 {
		return v.ZoomMin
	}
	ratio := metric / v.Baseline
	z := 1 + (ratio-1)*v.K
	if math.IsInf(z, 1) {
		return v.ZoomMax
	}
	return math.Max(v.ZoomMin, math.Min(v.ZoomMax, z))
}

// View is the world rectangle on screen. The anchor sits at its centre.
type View struct {
	X, Y float64
	W, H float64
	Zoom float64
}

// Contains reports whether (x, y) is inside the view grown by margin.
func (v View) Contains(x, y, margin float64) bool {
	return x >= v.X-margin && x <= v.X+v.W+margin &&
		y >= v.Y-margin && y <= v.Y+v.H+margin
}

// Center is the anchor the view was built around.
func (v View) Center() models.Vec {
	return models.Vec{X: v.X + v.W/2, Y: v.Y + v.H/2}
}

// Camera snaps to its anchor every frame; there is no easing.
type Camera struct {
	variant Variant
	baseW   float64
	baseH   float64
	view    View
}

func New(v Variant, baseW, baseH float64) *Camera {
	return &Camera{
		variant: v,
		baseW:   baseW,
		baseH:   baseH,
		view:    View{W: baseW, H: baseH, Zoom: 1},
	}
}

func (c *Camera) Variant() Variant { return c.variant }

// SetVariant swaps the zoom curve, e.g. once the schema is known.
func (c *Camera) SetVariant(v Variant) { c.variant = v }

func (c *Camera) Base() (float64, float64) { return c.baseW, c.baseH }

func (c *Camera) View() View { return c.view }

// Resize changes the base viewport and keeps the current centre.
func (c *Camera) Resize(w, h float64) {
	center := c.view.Center()
	c.baseW, c.baseH = w, h
	c.view = Compute(w, h, center, c.view.Zoom)
}

// Follow recomputes the view around anchor. A non-positive metric (dead
// player, empty fleet) leaves the previous view in place.
func (c *Camera) Follow(anchor models.Vec, metric float64) View {
	if metric <= 0 {
		return c.view
	}
	c.view = Compute(c.baseW, c.baseH, anchor, c.variant.Zoom(metric))
	return c.view
}

// Compute builds the view of a base viewport scaled by zoom and centred on
// anchor.
func Compute(baseW, baseH float64, anchor models.Vec, zoom float64) View {
	w := baseW * zoom
	h := baseH * zoom
	return View{
		X:    anchor.X - w/2,
		Y:    anchor.Y - h/2,
		W:    w,
		H:    h,
		Zoom: zoom,
	}
}
