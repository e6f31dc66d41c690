package view

import (
	"math"
	"testing"
	"time"

	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProjector_WorldToScreen(t *testing.T) {
	cam := camera.New(camera.Presets["gentle"], 1000, 500)
	v := cam.Follow(models.Vec{X: 400, Y: 300}, 25) // zoom 1.4
	p := NewProjector(v, 1000, 500)

	sx, sy := p.WorldToScreen(400, 300)
	if !almostEqual(sx, 500) || !almostEqual(sy, 250) {
		t.Errorf("Anchor should project to screen centre, got (%v, %v)", sx, sy)
	}
	if !almostEqual(p.Scale(), 1/1.4) {
		t.Errorf("Expected scale 1/1.4, got %v", p.Scale())
	}

	wx, wy := p.ScreenToWorld(sx, sy)
	if !almostEqual(wx, 400) || !almostEqual(wy, 300) {
		t.Errorf("Round trip failed, got (%v, %v)", wx, wy)
	}
	if !almostEqual(p.Length(14), 10) {
		t.Errorf("Expected radius 14 to shrink to 10, got %v", p.Length(14))
	}
}

func TestProjector_Visible(t *testing.T) {
	p := NewProjector(camera.View{X: 0, Y: 0, W: 100, H: 100, Zoom: 1}, 100, 100)
	if !p.Visible(105, 50, 10) {
		t.Error("A circle overlapping the edge should be visible")
	}
	if p.Visible(200, 50, 10) {
		t.Error("A far away circle should be culled")
	}
}

func TestDirectionTo(t *testing.T) {
	d := DirectionTo(700, 100, 1000, 500)
	if d.DX != 200 || d.DY != -150 {
		t.Errorf("Expected (200, -150), got (%v, %v)", d.DX, d.DY)
	}
}

func TestMinimap_Project(t *testing.T) {
	m := NewMinimap(150, 112, models.World{Width: 2000, Height: 1500})

	x, y := m.Project(0, 0)
	if x != 1 || y != 1 {
		t.Errorf("World origin should land on the border, got (%v, %v)", x, y)
	}
	x, y = m.Project(2000, 1500)
	if !almostEqual(x, 149) || !almostEqual(y, 111) {
		t.Errorf("World corner should land inside the far border, got (%v, %v)", x, y)
	}
	if r := m.DotRadius(1); r != 2 {
		t.Errorf("Tiny entities get the minimum dot, got %v", r)
	}
}

func TestMinimap_ViewRect(t *testing.T) {
	m := NewMinimap(150, 112, models.World{Width: 2000, Height: 1500})
	r := m.ViewRect(camera.View{X: 500, Y: 375, W: 1000, H: 750, Zoom: 1})

	if !almostEqual(r.X, 500*148.0/2000+1) || !almostEqual(r.W, 74) || !almostEqual(r.H, 55) {
		t.Errorf("Unexpected indicator %+v", r)
	}
}

func TestMinimap_EmptyWorld(t *testing.T) {
	m := NewMinimap(150, 112, models.World{})
	x, y := m.Project(500, 500)
	if x != 1 || y != 1 {
		t.Errorf("An unsized world should collapse onto the border, got (%v, %v)", x, y)
	}
}

func TestStars_Deterministic(t *testing.T) {
	v := camera.View{X: 300, Y: 200, W: 1000, H: 500, Zoom: 1}
	a := Stars(DefaultStarLayers, v, 1000)
	b := Stars(DefaultStarLayers, v, 1000)

	if len(a) == 0 {
		t.Fatal("Expected some stars")
	}
	if len(a) != len(b) {
		t.Fatalf("Same camera should give the same stars, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Star %d differs: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].X < 0 || a[i].X > 1000 || a[i].Y < 0 || a[i].Y > 500 {
			t.Fatalf("Star %d off screen: %+v", i, a[i])
		}
	}
}

func TestGridLines_ClippedToWorld(t *testing.T) {
	v := camera.View{X: -100, Y: -100, W: 300, H: 300, Zoom: 1}
	lines := GridLines(v, models.World{Width: 1000, Height: 1000}, 50)

	// x and y in {0, 50, 100, 150, 200}
	if len(lines) != 10 {
		t.Fatalf("Expected 10 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.X1 < 0 || l.Y1 < 0 {
			t.Errorf("Line leaves the world: %+v", l)
		}
	}
	if GridLines(camera.View{X: 5000, Y: 5000, W: 10, H: 10}, models.World{Width: 100, Height: 100}, 50) != nil {
		t.Error("A view outside the world has no grid")
	}
}

func TestEffects_PlaceAndPrune(t *testing.T) {
	now := time.Unix(1000, 0)
	fx := NewEffects(time.Second)
	fx.Add("💀", 400, 300, now)

	p := NewProjector(camera.View{X: 0, Y: 0, W: 1000, H: 500, Zoom: 1}, 1000, 500)
	placed := fx.Place(p, now.Add(500*time.Millisecond))
	if len(placed) != 1 {
		t.Fatalf("Expected one placed effect, got %d", len(placed))
	}
	if !almostEqual(placed[0].X, 400) || !almostEqual(placed[0].Y, 285) || !almostEqual(placed[0].Alpha, 0.5) {
		t.Errorf("Unexpected halfway placement %+v", placed[0])
	}

	fx.Prune(now.Add(2 * time.Second))
	if fx.Len() != 0 {
		t.Error("Finished effects should be pruned")
	}
}

func TestStars_CoverWideView(t *testing.T) {
	// zoomed out far enough that the view is wider than a star tile
	v := camera.View{X: 500, Y: 400, W: 3840, H: 2160, Zoom: 3}
	stars := Stars(DefaultStarLayers, v, 1280)

	var right, bottom bool
	for _, s := range stars {
		if s.X > 1280*0.75 {
			right = true
		}
		if s.Y > 720*0.75 {
			bottom = true
		}
		if s.X < 0 || s.X > 1280 || s.Y < 0 || s.Y > 720 {
			t.Fatalf("Star off screen: %+v", s)
		}
	}
	if !right || !bottom {
		t.Errorf("Stars should reach the far screen edges, right=%v bottom=%v", right, bottom)
	}
}

func TestNearEdge(t *testing.T) {
	world := models.World{Width: 2000, Height: 1500}
	cases := []struct {
		view camera.View
		want bool
	}{
		{camera.View{X: 600, Y: 500, W: 800, H: 500}, false},
		{camera.View{X: 399, Y: 500, W: 800, H: 500}, true},
		{camera.View{X: 600, Y: 399, W: 800, H: 500}, true},
		{camera.View{X: 801, Y: 500, W: 800, H: 500}, true},
		{camera.View{X: 600, Y: 601, W: 800, H: 500}, true},
	}
	for _, c := range cases {
		if got := NearEdge(c.view, world); got != c.want {
			t.Errorf("NearEdge(%+v) = %v, want %v", c.view, got, c.want)
		}
	}
}

func TestBillboardLayout(t *testing.T) {
	world := models.World{Width: 2000, Height: 1500}
	boards := BillboardLayout(world)

	count := map[Edge]int{}
	for _, b := range boards {
		count[b.Edge]++
		if b.W != BillboardSize || b.H != BillboardSize {
			t.Fatalf("Unexpected panel size %+v", b)
		}
	}
	if count[EdgeLeft] != 8 || count[EdgeRight] != 8 || count[EdgeTop] != 11 || count[EdgeBottom] != 11 {
		t.Fatalf("Unexpected panels per edge: %v", count)
	}

	first := map[Edge]Billboard{}
	for _, b := range boards {
		if _, ok := first[b.Edge]; !ok {
			first[b.Edge] = b
		}
	}
	want := map[Edge]Billboard{
		EdgeLeft:   {X: -120, Y: 150, W: 100, H: 100, Edge: EdgeLeft, Slot: 0},
		EdgeRight:  {X: 2020, Y: 150, W: 100, H: 100, Edge: EdgeRight, Slot: 2},
		EdgeTop:    {X: 150, Y: -120, W: 100, H: 100, Edge: EdgeTop, Slot: 4},
		EdgeBottom: {X: 150, Y: 1520, W: 100, H: 100, Edge: EdgeBottom, Slot: 1},
	}
	for edge, w := range want {
		if first[edge] != w {
			t.Errorf("%s: expected %+v, got %+v", edge, w, first[edge])
		}
	}
	if boards[1].Slot != 1 {
		t.Errorf("Slots should rotate along an edge, got %d", boards[1].Slot)
	}
}

func TestBillboards_ProjectedAndCulled(t *testing.T) {
	world := models.World{Width: 2000, Height: 1500}

	centred := NewProjector(camera.View{X: 600, Y: 500, W: 800, H: 500, Zoom: 1}, 800, 500)
	if got := Billboards(world, centred); len(got) != 0 {
		t.Errorf("No billboards away from the edges, got %d", len(got))
	}

	corner := NewProjector(camera.View{X: -200, Y: 0, W: 1000, H: 500, Zoom: 1}, 1000, 500)
	panels := Billboards(world, corner)
	if len(panels) != 8 {
		t.Fatalf("Expected 3 left and 5 top panels, got %d: %+v", len(panels), panels)
	}
	if p := panels[0]; p.Edge != EdgeLeft || p.Rect != (Rect{X: 80, Y: 150, W: 100, H: 100}) {
		t.Errorf("Unexpected first panel %+v", p)
	}
	for _, p := range panels {
		if p.Edge != EdgeLeft && p.Edge != EdgeTop {
			t.Errorf("Panel on %s edge should be culled", p.Edge)
		}
	}

	zoomed := NewProjector(camera.View{X: -200, Y: 0, W: 2000, H: 1000, Zoom: 2}, 1000, 500)
	if p := Billboards(world, zoomed)[0]; p.W != 50 {
		t.Errorf("Panels should scale with the view, got width %v", p.W)
	}
}
