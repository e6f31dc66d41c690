package chat

import (
	"fmt"
	"time"

	"github.com/wfunc/fleetview/broadcast"
)

// Line is one rendered chat row.
type Line struct {
	Text  string
	Kind  string
	Count int
}

// Render returns the row text, with the repeat suffix once a message has
// been seen more than once.
func (l Line) Render() string {
	if l.Count > 1 {
		return fmt.Sprintf("%s (%d times)", l.Text, l.Count)
	}
	return l.Text
}

type tracked struct {
	line     *Line
	lastSeen time.Time
}

// Feed is the bounded chat log. Identical messages arriving inside the
// window collapse into one line with a count.
type Feed struct {
	window   time.Duration
	maxLines int
	lines    []*Line
	recent   map[string]*tracked
}

func NewFeed(window time.Duration, maxLines int) *Feed {
	if maxLines <= 0 {
		maxLines = 50
	}
	return &Feed{
		window:   window,
		maxLines: maxLines,
		recent:   make(map[string]*tracked),
	}
}

func (f *Feed) Add(text, kind string, now time.Time) {
	for k, t := range f.recent {
		if now.Sub(t.lastSeen) > f.window {
			delete(f.recent, k)
		}
	}

	key := kind + "\x00" + text
	if t, ok := f.recent[key]; ok {
		t.line.Count++
		t.lastSeen = now
		f.moveToBottom(t.line)
		return
	}

	line := &Line{Text: text, Kind: kind, Count: 1}
	f.lines = append(f.lines, line)
	f.recent[key] = &tracked{line: line, lastSeen: now}

	for len(f.lines) > f.maxLines {
		dropped := f.lines[0]
		f.lines[0] = nil
		f.lines = f.lines[1:]
		k := dropped.Kind + "\x00" + dropped.Text
		if t, ok := f.recent[k]; ok && t.line == dropped {
			delete(f.recent, k)
		}
	}
}

func (f *Feed) moveToBottom(line *Line) {
	for i, l := range f.lines {
		if l == line {
			copy(f.lines[i:], f.lines[i+1:])
			f.lines[len(f.lines)-1] = line
			return
		}
	}
}

// Lines returns a copy of the log, oldest first.
func (f *Feed) Lines() []Line {
	out := make([]Line, len(f.lines))
	for i, l := range f.lines {
		out[i] = *l
	}
	return out
}

func (f *Feed) Len() int { return len(f.lines) }

// Clear empties the log and the repeat tracking.
func (f *Feed) Clear() {
	f.lines = nil
	clear(f.recent)
}

// Attach subscribes the feed to every chat-worthy notice on hub. Status and
// alert notices are left to the status line.
func (f *Feed) Attach(hub *broadcast.Hub, clock func() time.Time) {
	hub.Subscribe(func(n broadcast.Notice) {
		if n.Text == "" {
			return
		}
		f.Add(n.Text, string(n.Kind), clock())
	},
		broadcast.KindJoin,
		broadcast.KindLeave,
		broadcast.KindElimination,
		broadcast.KindInfection,
		broadcast.KindRename,
		broadcast.KindItem,
	)
}
