package hud

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
)

const (
	LeaderboardSize = 10
	EmptyBoard      = "No active players"

	// MaxFleetSize is the server's fleet cap.
	MaxFleetSize = 50
)

type Entry struct {
	Rank   int
	ID     string
	Name   string
	Metric float64
	Me     bool
}

// Label is the single line shown for e.
func (e Entry) Label() string {
	name := e.Name
	if name == "" {
		name = "Anonymous"
	}
	return fmt.Sprintf("%d. %s (%d)", e.Rank, name, int(e.Metric))
}

// Leaderboard ranks live players by the schema metric. Ties keep store
// order.
func Leaderboard(s *store.Store, schema models.Schema, myID string) []Entry {
	var out []Entry
	s.Players.Each(func(id string, p *models.Player) bool {
		if p.IsDead {
			return true
		}
		out = append(out, Entry{ID: id, Name: p.Name, Metric: p.Metric(schema), Me: id == myID})
		return true
	})
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Metric > b.Metric:
			return -1
		case a.Metric < b.Metric:
			return 1
		}
		return 0
	})
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Text renders the board one entry per line.
func Text(entries []Entry) string {
	if len(entries) == 0 {
		return EmptyBoard
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Label())
	}
	return b.String()
}
