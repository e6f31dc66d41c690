package view

import "time"

// Effect is floating text anchored in world space, e.g. the skull over an
// infected minion.
type Effect struct {
	Text string
	X, Y float64
	Born time.Time
	TTL  time.Duration
}

// Progress is how far through its life the effect is, in [0, 1].
func (e Effect) Progress(now time.Time) float64 {
	if e.TTL <= 0 {
		return 1
	}
	p := float64(now.Sub(e.Born)) / float64(e.TTL)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Placed is an effect projected for one frame.
type Placed struct {
	Text  string
	X, Y  float64
	Alpha float64
}

// Effects keeps the live floating effects.
type Effects struct {
	ttl   time.Duration
	items []Effect
}

func NewEffects(ttl time.Duration) *Effects {
	return &Effects{ttl: ttl}
}

func (e *Effects) Add(text string, x, y float64, now time.Time) {
	e.items = append(e.items, Effect{Text: text, X: x, Y: y, Born: now, TTL: e.ttl})
}

// Prune drops finished effects.
func (e *Effects) Prune(now time.Time) {
	kept := e.items[:0]
	for _, it := range e.items {
		if now.Sub(it.Born) < it.TTL {
			kept = append(kept, it)
		}
	}
	clear(e.items[len(kept):])
	e.items = kept
}

func (e *Effects) Len() int { return len(e.items) }

// Place projects every live effect. Effects rise 30 screen pixels and fade
// out over their life.
func (e *Effects) Place(p Projector, now time.Time) []Placed {
	out := make([]Placed, 0, len(e.items))
	for _, it := range e.items {
		prog := it.Progress(now)
		sx, sy := p.WorldToScreen(it.X, it.Y)
		out = append(out, Placed{
			Text:  it.Text,
			X:     sx,
			Y:     sy - 30*prog,
			Alpha: 1 - prog,
		})
	}
	return out
}
