package hud

import (
	"fmt"
	"testing"

	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
)

func TestLeaderboard_Order(t *testing.T) {
	s := store.New()
	s.UpsertPlayer(models.PlayerState{ID: "a", Name: models.Ptr("A"), MinionCount: models.Ptr(3)})
	s.UpsertPlayer(models.PlayerState{ID: "b", Name: models.Ptr("B"), MinionCount: models.Ptr(9)})
	s.UpsertPlayer(models.PlayerState{ID: "c", Name: models.Ptr("C"), MinionCount: models.Ptr(3)})
	s.UpsertPlayer(models.PlayerState{ID: "d", Name: models.Ptr("D"), MinionCount: models.Ptr(50), IsDead: models.Ptr(true)})

	board := Leaderboard(s, models.SchemaFleetBased, "c")
	if len(board) != 3 {
		t.Fatalf("Dead players are excluded, got %d entries", len(board))
	}
	wantIDs := []string{"b", "a", "c"}
	for i, id := range wantIDs {
		if board[i].ID != id || board[i].Rank != i+1 {
			t.Errorf("Entry %d: expected %s rank %d, got %+v", i, id, i+1, board[i])
		}
	}
	if !board[2].Me || board[0].Me {
		t.Error("Only the local player should be flagged")
	}
	if got := board[0].Label(); got != "1. B (9)" {
		t.Errorf("Unexpected label %q", got)
	}
}

func TestLeaderboard_SizeSchema(t *testing.T) {
	s := store.New()
	s.UpsertPlayer(models.PlayerState{ID: "a", Size: models.Ptr(20.0)})
	s.UpsertPlayer(models.PlayerState{ID: "b", Size: models.Ptr(35.5)})

	board := Leaderboard(s, models.SchemaSizeBased, "")
	if board[0].ID != "b" || board[0].Metric != 35.5 {
		t.Errorf("Expected b first by size, got %+v", board[0])
	}
}

func TestLeaderboard_TopTen(t *testing.T) {
	s := store.New()
	for i := 0; i < 15; i++ {
		s.UpsertPlayer(models.PlayerState{ID: fmt.Sprint(i), MinionCount: models.Ptr(i)})
	}
	board := Leaderboard(s, models.SchemaFleetBased, "")
	if len(board) != LeaderboardSize {
		t.Fatalf("Expected %d entries, got %d", LeaderboardSize, len(board))
	}
	if board[0].ID != "14" {
		t.Errorf("Expected 14 on top, got %s", board[0].ID)
	}
}

func TestText_Empty(t *testing.T) {
	if got := Text(nil); got != EmptyBoard {
		t.Errorf("Expected %q, got %q", EmptyBoard, got)
	}
	got := Text([]Entry{{Rank: 1, Name: "A", Metric: 2}, {Rank: 2, Metric: 1}})
	if got != "1. A (2)\n2. Anonymous (1)" {
		t.Errorf("Unexpected board %q", got)
	}
}
