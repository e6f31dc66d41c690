package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/wfunc/fleetview/hud"
	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/view"
	"golang.org/x/image/font/basicfont"
)

var (
	spaceColor   = color.RGBA{12, 12, 28, 255}
	gridColor    = color.NRGBA{100, 181, 246, 38}
	boundsColor  = color.NRGBA{100, 181, 246, 128}
	panelColor   = color.NRGBA{10, 10, 32, 200}
	minimapColor = color.RGBA{10, 10, 32, 255}
)

// PNG draws frames with gg and writes every Nth one to disk.
type PNG struct {
	dc     *gg.Context
	dir    string
	every  int
	frames int
	saved  int
}

func NewPNG(width, height int, dir string, every int) (*PNG, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: bad png size %dx%d", width, height)
	}
	if every <= 0 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create %s: %w", dir, err)
	}
	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	return &PNG{dc: dc, dir: dir, every: every}, nil
}

// Saved is how many frames were written.
func (p *PNG) Saved() int { return p.saved }

func (p *PNG) Draw(f *Frame) error {
	p.frames++
	if (p.frames-1)%p.every != 0 {
		return nil
	}
	p.paint(f)
	path := filepath.Join(p.dir, fmt.Sprintf("frame_%06d.png", p.frames))
	if err := p.dc.SavePNG(path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	p.saved++
	logger.Log.Debugf("Saved frame %s", path)
	return nil
}

func (p *PNG) Close() error { return nil }

func (p *PNG) paint(f *Frame) {
	dc := p.dc
	w, h := float64(dc.Width()), float64(dc.Height())

	dc.SetColor(spaceColor)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	for _, s := range f.Stars {
		dc.SetColor(color.NRGBA{255, 255, 255, uint8(s.Alpha * 255)})
		dc.DrawRectangle(s.X, s.Y, s.Size, s.Size)
		dc.Fill()
	}

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for _, l := range f.Grid {
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	dc.SetColor(boundsColor)
	dc.SetLineWidth(4)
	dc.DrawRoundedRectangle(f.Bounds.X, f.Bounds.Y, f.Bounds.W, f.Bounds.H, f.BoundsRadius)
	dc.Stroke()

	for _, b := range f.Billboards {
		p.billboard(b)
	}

	for _, it := range f.Items {
		dc.SetColor(rgba(it.Color, 0.3))
		dc.DrawCircle(it.X, it.Y, it.R+5)
		dc.Fill()
		dc.SetColor(rgba(it.Color, 1))
		dc.DrawCircle(it.X, it.Y, it.R)
		dc.Fill()
		dc.SetColor(color.White)
		dc.SetLineWidth(2)
		dc.DrawCircle(it.X, it.Y, it.R)
		dc.Stroke()
		dc.DrawStringAnchored(it.Label, it.X, it.Y-it.R-8, 0.5, 0.5)
	}

	for _, b := range f.Blobs {
		p.disc(b)
	}
	for _, m := range f.Minions {
		p.disc(m)
	}

	for _, e := range f.Effects {
		dc.SetColor(color.NRGBA{255, 215, 0, uint8(e.Alpha * 255)})
		dc.DrawStringAnchored(e.Text, e.X, e.Y, 0.5, 0.5)
	}

	p.minimap(f.Minimap, w, h)
	p.panel(f)
}

func (p *PNG) disc(d Disc) {
	dc := p.dc
	if d.Mine {
		dc.SetColor(color.NRGBA{255, 255, 255, 25})
		dc.DrawCircle(d.X, d.Y, d.R+2)
		dc.Fill()
	}
	if d.AtMax {
		dc.SetColor(color.NRGBA{255, 107, 107, 153})
		dc.SetLineWidth(3)
		dc.SetDash(6, 6)
		dc.DrawCircle(d.X, d.Y, d.R+4)
		dc.Stroke()
		dc.SetDash()
	}
	fill, border := 0.6, 0.9
	if d.Shielded {
		dc.SetColor(color.NRGBA{255, 255, 255, 76})
		dc.SetLineWidth(2)
		dc.SetDash(4, 4)
		dc.DrawCircle(d.X, d.Y, d.R+3)
		dc.Stroke()
		dc.SetDash()
		fill, border = 0.4, 0.7
	}

	dc.SetColor(rgba(d.Color, fill))
	dc.DrawCircle(d.X, d.Y, d.R)
	dc.Fill()

	dc.SetColor(rgba(d.Color, border))
	if d.Mine {
		dc.SetLineWidth(3)
	} else {
		dc.SetLineWidth(2.5)
	}
	dc.DrawCircle(d.X, d.Y, d.R)
	dc.Stroke()

	if d.Mine {
		dc.SetColor(color.White)
		dc.SetLineWidth(1.5)
		dc.DrawCircle(d.X, d.Y, d.R+1)
		dc.Stroke()
	}

	if d.Label != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(d.Label, d.X+1, d.Y+1, 0.5, 0.5)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(d.Label, d.X, d.Y, 0.5, 0.5)
	}
}

// billboard draws a placeholder panel with a black frame.
func (p *PNG) billboard(b view.Panel) {
	dc := p.dc
	inset := b.W / 10
	dc.SetColor(rgba(billboardColor(b.Slot), 1))
	dc.DrawRectangle(b.X+inset, b.Y+inset, b.W-2*inset, b.H-2*inset)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(fmt.Sprintf("AD %d", b.Slot+1), b.X+b.W/2, b.Y+b.H/2, 0.5, 0.5)
	dc.SetLineWidth(2)
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	dc.Stroke()
}

// minimap goes in the bottom right corner.
func (p *PNG) minimap(m MinimapFrame, w, h float64) {
	dc := p.dc
	ox, oy := w-m.Width-10, h-m.Height-10

	dc.Push()
	defer dc.Pop()
	dc.Translate(ox, oy)

	dc.SetColor(minimapColor)
	dc.DrawRectangle(0, 0, m.Width, m.Height)
	dc.Fill()
	dc.SetColor(color.NRGBA{100, 181, 246, 153})
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, m.Width-2, m.Height-2)
	dc.Stroke()

	for _, d := range m.Dots {
		if d.Mine {
			dc.SetColor(color.NRGBA{255, 255, 255, 102})
			dc.DrawCircle(d.X, d.Y, d.R+1)
			dc.Fill()
		}
		dc.SetColor(rgba(d.Color, 0.6))
		dc.DrawCircle(d.X, d.Y, d.R)
		dc.Fill()
	}

	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.SetDash(3, 3)
	dc.DrawRectangle(m.View.X, m.View.Y, m.View.W, m.View.H)
	dc.Stroke()
	dc.SetDash()
}

// panel draws the leaderboard top right and the chat bottom left.
func (p *PNG) panel(f *Frame) {
	dc := p.dc
	w, h := float64(dc.Width()), float64(dc.Height())
	const lineH = 15.0

	board := hud.Text(f.Leaderboard)
	lines := len(f.Leaderboard)
	if lines == 0 {
		lines = 1
	}
	dc.SetColor(panelColor)
	dc.DrawRectangle(w-210, 10, 200, float64(lines+1)*lineH+10)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawString("Leaderboard", w-200, 10+lineH)
	for i, e := range f.Leaderboard {
		if e.Me {
			dc.SetColor(color.NRGBA{255, 215, 0, 255})
		} else {
			dc.SetColor(color.White)
		}
		dc.DrawString(e.Label(), w-200, 10+float64(i+2)*lineH)
	}
	if len(f.Leaderboard) == 0 {
		dc.DrawString(board, w-200, 10+2*lineH)
	}

	dc.SetColor(color.White)
	if f.HUD != "" {
		dc.DrawString(f.HUD, 10, lineH+5)
	}
	if f.Status != "" {
		dc.DrawString(f.Status, 10, 2*lineH+5)
	}

	chat := f.Chat
	if len(chat) > 8 {
		chat = chat[len(chat)-8:]
	}
	for i, l := range chat {
		dc.DrawString(l.Render(), 10, h-10-float64(len(chat)-1-i)*lineH)
	}
}
