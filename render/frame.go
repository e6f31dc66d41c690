package render

import (
	"fmt"

	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/chat"
	"github.com/wfunc/fleetview/hud"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
	"github.com/wfunc/fleetview/view"
)

const (
	GridStep   = 100.0
	ItemRadius = 15.0
	ItemColor  = "#ffd700"

	// BoundsRadius rounds the world border corners, in world units.
	BoundsRadius = 50.0
)

// BillboardColors fill the placeholder panels, indexed by slot.
var BillboardColors = []string{"#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff"}

// Disc is a circle in screen space.
type Disc struct {
	X, Y, R  float64
	Color    string
	Label    string
	Mine     bool
	Shielded bool
	AtMax    bool
}

type Dot struct {
	X, Y, R float64
	Color   string
	Mine    bool
}

type MinimapFrame struct {
	Width, Height float64
	Dots          []Dot
	View          view.Rect
}

// Frame is everything a backend draws, already projected to screen space.
type Frame struct {
	Width, Height float64
	Phase         string
	Status        string
	HUD           string

	Bounds       view.Rect
	BoundsRadius float64
	Billboards   []view.Panel
	Grid         []view.Line
	Stars        []view.Star
	Blobs        []Disc
	Minions      []Disc
	Items        []Disc
	Effects      []view.Placed
	Minimap      MinimapFrame
	Leaderboard  []hud.Entry
	Chat         []chat.Line
}

// Scene is the loop state a frame is built from.
type Scene struct {
	Store   *store.Store
	Schema  models.Schema
	World   models.World
	MyID    string
	View    camera.View
	BaseW   float64
	BaseH   float64
	Minimap view.Minimap
	Items   []models.SpecialItem
	Effects []view.Placed
	Chat    []chat.Line
	Phase   string
	Status  string
	Now     float64 // unix seconds
}

// Compose projects sc into a Frame. Off screen entities are culled, the
// minimap always shows the whole world.
func Compose(sc Scene) *Frame {
	p := view.NewProjector(sc.View, sc.BaseW, sc.BaseH)
	f := &Frame{
		Width:   sc.BaseW,
		Height:  sc.BaseH,
		Phase:   sc.Phase,
		Status:  sc.Status,
		Effects: sc.Effects,
		Chat:    sc.Chat,
		Stars:   view.Stars(view.DefaultStarLayers, sc.View, sc.BaseW),
		Minimap: MinimapFrame{
			Width:  sc.Minimap.Width,
			Height: sc.Minimap.Height,
			View:   sc.Minimap.ViewRect(sc.View),
		},
	}

	bx, by := p.WorldToScreen(0, 0)
	f.Bounds = view.Rect{X: bx, Y: by, W: p.Length(sc.World.Width), H: p.Length(sc.World.Height)}
	f.BoundsRadius = p.Length(BoundsRadius)
	f.Billboards = view.Billboards(sc.World, p)

	for _, l := range view.GridLines(sc.View, sc.World, GridStep) {
		x1, y1 := p.WorldToScreen(l.X1, l.Y1)
		x2, y2 := p.WorldToScreen(l.X2, l.Y2)
		f.Grid = append(f.Grid, view.Line{X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	sc.Store.Minions.Each(func(_ string, m *models.Minion) bool {
		mine := sc.MyID != "" && m.OwnerID == sc.MyID
		mx, my := sc.Minimap.Project(m.X, m.Y)
		f.Minimap.Dots = append(f.Minimap.Dots, Dot{X: mx, Y: my, R: sc.Minimap.DotRadius(m.Size), Color: m.Color, Mine: mine})

		r := m.Size / 2
		if !p.Visible(m.X, m.Y, r) {
			return true
		}
		atMax := false
		if owner, ok := sc.Store.Players.Get(m.OwnerID); ok {
			atMax = owner.MinionCount >= hud.MaxFleetSize
		}
		sx, sy := p.WorldToScreen(m.X, m.Y)
		f.Minions = append(f.Minions, Disc{
			X:        sx,
			Y:        sy,
			R:        p.Length(r),
			Color:    m.Color,
			Label:    m.OriginalName,
			Mine:     mine,
			Shielded: m.IsInvulnerable,
			AtMax:    atMax,
		})
		return true
	})

	if sc.Schema != models.SchemaFleetBased {
		sc.Store.Players.Each(func(id string, pl *models.Player) bool {
			if pl.IsDead || pl.Size <= 0 {
				return true
			}
			mine := id == sc.MyID
			mx, my := sc.Minimap.Project(pl.X, pl.Y)
			f.Minimap.Dots = append(f.Minimap.Dots, Dot{X: mx, Y: my, R: sc.Minimap.DotRadius(pl.Size), Color: pl.Color, Mine: mine})
			if !p.Visible(pl.X, pl.Y, pl.Size) {
				return true
			}
			sx, sy := p.WorldToScreen(pl.X, pl.Y)
			f.Blobs = append(f.Blobs, Disc{
				X:        sx,
				Y:        sy,
				R:        p.Length(pl.Size),
				Color:    pl.Color,
				Label:    pl.Name,
				Mine:     mine,
				Shielded: pl.Invulnerable(sc.Now),
			})
			return true
		})
	}

	for _, it := range sc.Items {
		if !p.Visible(it.X, it.Y, ItemRadius) {
			continue
		}
		sx, sy := p.WorldToScreen(it.X, it.Y)
		f.Items = append(f.Items, Disc{X: sx, Y: sy, R: p.Length(ItemRadius), Color: ItemColor, Label: it.Adjective})
	}

	f.Leaderboard = hud.Leaderboard(sc.Store, sc.Schema, sc.MyID)
	if me, ok := sc.Store.Players.Get(sc.MyID); ok {
		f.HUD = hudLine(me, sc.Schema)
	}
	return f
}

func billboardColor(slot int) string {
	return BillboardColors[slot%len(BillboardColors)]
}

func hudLine(me *models.Player, schema models.Schema) string {
	if schema == models.SchemaSizeBased {
		return fmt.Sprintf("%s  Size: %d", me.Name, int(me.Size))
	}
	if me.MinionCount >= hud.MaxFleetSize {
		return fmt.Sprintf("%s  Minions: %d (MAX FLEET!)", me.Name, me.MinionCount)
	}
	return fmt.Sprintf("%s  Minions: %d", me.Name, me.MinionCount)
}
