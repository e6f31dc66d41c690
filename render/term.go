package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/wfunc/fleetview/hud"
	"github.com/wfunc/fleetview/state"
	"github.com/wfunc/fleetview/view"
)

const (
	panelWidth = 32
	moveStep   = 100.0
	maxNameLen = 20
)

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGrid    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(40, 70, 100))
	styleItem    = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
	styleMe      = tcell.StyleDefault.Foreground(tcell.ColorGold)
	styleEffect  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Terminal draws frames on a tcell screen and turns keys into controls.
type Terminal struct {
	screen   tcell.Screen
	controls Controls
	done     chan struct{}

	mu        sync.Mutex
	prompting bool
	prompt    []rune
}

func NewTerminal(controls Controls) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("render: terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("render: terminal init: %w", err)
	}
	return newTerminal(screen, controls), nil
}

func newTerminal(screen tcell.Screen, controls Controls) *Terminal {
	t := &Terminal{screen: screen, controls: controls, done: make(chan struct{})}
	go t.pollEvents()
	return t
}

func (t *Terminal) pollEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		if !t.handleEvent(ev) {
			return
		}
	}
}

// handleEvent returns false once the user asked to quit.
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		return t.handleKey(ev.Key(), ev.Rune())
	}
	return true
}

type keyAction int

const (
	actNone keyAction = iota
	actMove
	actRespawn
	actPrompt
	actQuit
)

// handleKey returns false once the user asked to quit. While the name prompt
// is open every key edits it, except Ctrl-C.
func (t *Terminal) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyCtrlC {
		t.quit()
		return false
	}

	t.mu.Lock()
	if t.prompting {
		name, submit := t.editPrompt(key, r)
		t.mu.Unlock()
		if submit && t.controls != nil {
			t.controls.Submit(name)
		}
		return true
	}
	t.mu.Unlock()

	act, dx, dy := keyCommand(key, r)
	switch act {
	case actMove:
		if t.controls != nil {
			t.controls.Move(dx, dy)
		}
	case actRespawn:
		if t.controls != nil {
			t.controls.Submit("")
		}
	case actPrompt:
		t.mu.Lock()
		t.prompting = true
		t.prompt = t.prompt[:0]
		t.mu.Unlock()
	case actQuit:
		t.quit()
		return false
	}
	return true
}

func (t *Terminal) quit() {
	if t.controls != nil {
		t.controls.Quit()
	}
}

// editPrompt applies one key to the open prompt. t.mu must be held.
func (t *Terminal) editPrompt(key tcell.Key, r rune) (string, bool) {
	switch key {
	case tcell.KeyEnter:
		name := string(t.prompt)
		t.prompting = false
		t.prompt = t.prompt[:0]
		return name, true
	case tcell.KeyEscape:
		t.prompting = false
		t.prompt = t.prompt[:0]
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(t.prompt); n > 0 {
			t.prompt = t.prompt[:n-1]
		}
	case tcell.KeyRune:
		if len(t.prompt) < maxNameLen {
			t.prompt = append(t.prompt, r)
		}
	}
	return "", false
}

// promptLine is the open prompt, or false when it is closed.
func (t *Terminal) promptLine() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return "Name: " + string(t.prompt) + "_", t.prompting
}

// keyCommand maps a key press outside the prompt to an action.
func keyCommand(key tcell.Key, r rune) (keyAction, float64, float64) {
	switch key {
	case tcell.KeyUp:
		return actMove, 0, -moveStep
	case tcell.KeyDown:
		return actMove, 0, moveStep
	case tcell.KeyLeft:
		return actMove, -moveStep, 0
	case tcell.KeyRight:
		return actMove, moveStep, 0
	case tcell.KeyEnter:
		return actPrompt, 0, 0
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit, 0, 0
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return actQuit, 0, 0
		case 'r', 'R':
			return actRespawn, 0, 0
		case 'w':
			return actMove, 0, -moveStep
		case 's':
			return actMove, 0, moveStep
		case 'a':
			return actMove, -moveStep, 0
		case 'd':
			return actMove, moveStep, 0
		}
	}
	return actNone, 0, 0
}

// phaseHint tells the player which keys answer the current prompt.
func phaseHint(phase string) string {
	switch phase {
	case state.AtMenu:
		return "Enter: type a name to join"
	case state.AwaitingJoinAck:
		return "Joining..."
	case state.AwaitingRespawnName:
		return "Eliminated! r: respawn, Enter: new name"
	}
	return ""
}

func (t *Terminal) Draw(f *Frame) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}

	s := t.screen
	s.Clear()
	cols, rows := s.Size()
	playW := cols - panelWidth
	if playW < 10 {
		playW = cols
	}

	cell := func(x, y float64) (int, int, bool) {
		if f.Width <= 0 || f.Height <= 0 {
			return 0, 0, false
		}
		cx := int(x / f.Width * float64(playW))
		cy := int(y / f.Height * float64(rows))
		return cx, cy, cx >= 0 && cx < playW && cy >= 0 && cy < rows
	}
	put := func(x, y float64, r rune, style tcell.Style) {
		if cx, cy, ok := cell(x, y); ok {
			s.SetContent(cx, cy, r, nil, style)
		}
	}

	for _, st := range f.Stars {
		put(st.X, st.Y, '.', styleDim)
	}
	if step := f.Height / float64(max(rows, 1)); step > 0 {
		for _, l := range f.Grid {
			if l.X1 != l.X2 {
				continue
			}
			for y := l.Y1; y <= l.Y2; y += step {
				put(l.X1, y, '│', styleGrid)
			}
		}
	}
	if f.Width > 0 && f.Height > 0 {
		for _, b := range f.Billboards {
			t.billboard(b, float64(playW)/f.Width, float64(rows)/f.Height, playW, rows)
		}
	}
	for _, it := range f.Items {
		put(it.X, it.Y, '*', styleItem)
	}
	for _, b := range f.Blobs {
		put(b.X, b.Y, 'O', discStyle(b))
	}
	for _, m := range f.Minions {
		r := 'o'
		if m.Mine {
			r = '@'
		}
		put(m.X, m.Y, r, discStyle(m))
	}
	for _, e := range f.Effects {
		if cx, cy, ok := cell(e.X, e.Y); ok {
			t.text(cx, cy, playW, e.Text, styleEffect)
		}
	}

	if playW < cols {
		t.panel(f, playW+1, cols, rows)
	}
	if line, ok := t.promptLine(); ok && rows > 0 {
		t.text(0, rows-1, playW, line, styleDefault.Reverse(true))
	}
	s.Show()
	return nil
}

// billboard fills the cells a panel covers and labels it when it fits. sx
// and sy are cells per screen pixel.
func (t *Terminal) billboard(b view.Panel, sx, sy float64, playW, rows int) {
	x0 := max(int(math.Floor(b.X*sx)), 0)
	y0 := max(int(math.Floor(b.Y*sy)), 0)
	x1 := min(int(math.Ceil((b.X+b.W)*sx))-1, playW-1)
	y1 := min(int(math.Ceil((b.Y+b.H)*sy))-1, rows-1)
	if x0 > x1 || y0 > y1 {
		return
	}
	r, g, bl := parseColor(billboardColor(b.Slot)).RGB255()
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(bl)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			t.screen.SetContent(x, y, '▒', nil, style)
		}
	}
	label := fmt.Sprintf("AD %d", b.Slot+1)
	if x1-x0+1 >= len(label) {
		t.text(x0+(x1-x0+1-len(label))/2, (y0+y1)/2, x1+1, label, style.Reverse(true))
	}
}

func discStyle(d Disc) tcell.Style {
	r, g, b := parseColor(d.Color).RGB255()
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	if d.Mine {
		style = style.Bold(true)
	}
	if d.Shielded {
		style = style.Dim(true)
	}
	return style
}

func (t *Terminal) panel(f *Frame, x0, cols, rows int) {
	y := 0
	line := func(s string, style tcell.Style) {
		if y < rows {
			t.text(x0, y, cols, s, style)
			y++
		}
	}

	line("Leaderboard", styleDefault.Bold(true))
	if len(f.Leaderboard) == 0 {
		line(hud.EmptyBoard, styleDim)
	}
	for _, e := range f.Leaderboard {
		style := styleDefault
		if e.Me {
			style = styleMe
		}
		line(e.Label(), style)
	}
	y++
	if f.HUD != "" {
		line(f.HUD, styleDefault)
	}
	if f.Status != "" {
		line(f.Status, styleDim)
	}
	if hint := phaseHint(f.Phase); hint != "" {
		line(hint, styleMe)
	}
	y++

	chat := f.Chat
	if room := rows - y; room >= 0 && len(chat) > room {
		chat = chat[len(chat)-room:]
	}
	for _, l := range chat {
		line(l.Render(), styleDefault)
	}
}

// text writes s from (x, y), clipped at maxX.
func (t *Terminal) text(x, y, maxX int, s string, style tcell.Style) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x += w
	}
}

// Close restores the terminal and stops the input goroutine.
func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}
