package reconcile

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/wfunc/fleetview/broadcast"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
)

// MockPublisher records every notice.
type MockPublisher struct {
	Notices []broadcast.Notice
}

func (m *MockPublisher) Publish(n broadcast.Notice) {
	m.Notices = append(m.Notices, n)
}

func newTestReconciler(opts Options) (*Reconciler, *MockPublisher) {
	pub := &MockPublisher{}
	return New(store.New(), pub, opts), pub
}

func player(id, name string, count int) models.PlayerState {
	return models.PlayerState{
		ID:           id,
		Name:         models.Ptr(name),
		X:            models.Ptr(100.0),
		Y:            models.Ptr(100.0),
		MinionCount:  models.Ptr(count),
		FleetCenterX: models.Ptr(100.0),
		FleetCenterY: models.Ptr(100.0),
	}
}

func minion(id, owner, original string) models.MinionState {
	return models.MinionState{
		ID:           id,
		OwnerID:      models.Ptr(owner),
		OriginalName: models.Ptr(original),
		X:            models.Ptr(100.0),
		Y:            models.Ptr(100.0),
		Size:         models.Ptr(20.0),
	}
}

func minionIDs(r *Reconciler) []string {
	return r.Store().Minions.IDs()
}

func TestReconciler_SnapshotScenario(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		World: models.World{Width: 3000, Height: 2000},
		Players: []models.PlayerState{{
			ID:           "A",
			X:            models.Ptr(100.0),
			Y:            models.Ptr(100.0),
			MinionCount:  models.Ptr(5),
			FleetCenterX: models.Ptr(100.0),
			FleetCenterY: models.Ptr(100.0),
		}},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice")},
	})

	if r.Store().Players.Len() != 1 || r.Store().Minions.Len() != 1 {
		t.Fatalf("Expected 1 player and 1 minion, got %d and %d", r.Store().Players.Len(), r.Store().Minions.Len())
	}
	if r.Schema() != models.SchemaFleetBased {
		t.Errorf("Expected fleet schema, got %v", r.Schema())
	}
	if r.World() != (models.World{Width: 3000, Height: 2000}) {
		t.Errorf("Expected world from snapshot, got %+v", r.World())
	}

	if sweep := r.Cleanup(); sweep.Total() != 0 {
		t.Errorf("Cleanup should leave a consistent snapshot alone, removed %+v", sweep)
	}
	if r.Store().Minions.Len() != 1 {
		t.Error("m1 should survive cleanup")
	}

	r.Left(models.PlayerLeft{PlayerID: "A"})
	if r.Store().Players.Len() != 0 || r.Store().Minions.Len() != 0 {
		t.Errorf("Expected empty store after A left, got %d players and %d minions", r.Store().Players.Len(), r.Store().Minions.Len())
	}
}

func TestReconciler_SnapshotReplacesEverything(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 5), player("B", "Bob", 5)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "B", "Bob")},
	})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("C", "Cid", 5)},
		AllMinions: []models.MinionState{minion("m3", "C", "Cid")},
	})

	if got := r.Store().Players.IDs(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("Expected only C after second snapshot, got %v", got)
	}
	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m3"}) {
		t.Errorf("Expected only m3 after second snapshot, got %v", got)
	}
	if r.World() != models.DefaultWorld {
		t.Errorf("A snapshot without world size should keep the previous one, got %+v", r.World())
	}
}

func TestReconciler_DeltaReplacesMinionsByDiff(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 3)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "A", "Alice"), minion("m3", "A", "Alice")},
	})

	r.ApplyDelta(models.GameStateDelta{
		Players: []models.PlayerState{{ID: "A", MinionCount: models.Ptr(2)}},
		AllMinions: []models.MinionState{
			{ID: "m3", X: models.Ptr(150.0)},
			minion("m4", "A", "Alice"),
		},
	})

	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m3", "m4"}) {
		t.Errorf("Expected minions [m3 m4], got %v", got)
	}
	m3, _ := r.Store().Minions.Get("m3")
	if m3.X != 150 || m3.OwnerID != "A" {
		t.Errorf("Expected m3 merged with its previous fields, got %+v", m3)
	}
	a, _ := r.Store().Players.Get("A")
	if a.MinionCount != 2 || a.Name != "Alice" {
		t.Errorf("Expected A merged, got %+v", a)
	}
}

func TestReconciler_DeltaWithoutMinionList(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 2)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "A", "Alice")},
	})

	var d models.GameStateDelta
	if err := json.Unmarshal([]byte(`{"players":[{"id":"A","x":150}]}`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	r.ApplyDelta(d)

	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m1", "m2"}) {
		t.Errorf("A players-only delta should keep minions, got %v", got)
	}
	a, _ := r.Store().Players.Get("A")
	if a.X != 150 {
		t.Errorf("Expected A moved to x=150, got %v", a.X)
	}

	d = models.GameStateDelta{}
	if err := json.Unmarshal([]byte(`{"players":[],"all_minions":[]}`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	r.ApplyDelta(d)
	if n := r.Store().Minions.Len(); n != 0 {
		t.Errorf("An explicit empty minion list should clear minions, got %d", n)
	}
}

func TestReconciler_ApplyPlayersUpserts(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplyPlayers([]models.PlayerState{{ID: "A", Size: models.Ptr(25.0)}})

	if r.Schema() != models.SchemaSizeBased {
		t.Errorf("Expected size schema, got %v", r.Schema())
	}
	if _, ok := r.Store().Players.Get("A"); !ok {
		t.Error("update_players should upsert unknown players")
	}
	if r.Store().Minions.Len() != 0 {
		t.Error("update_players must not touch minions")
	}
}

func TestReconciler_LeftPrunesByOwnerAndOriginalName(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players: []models.PlayerState{player("A", "Alice", 2), player("B", "Bob", 2)},
		AllMinions: []models.MinionState{
			minion("m1", "A", "Alice"),
			minion("m2", "B", "Alice"), // infected away from Alice
			minion("m3", "B", "Bob"),
		},
	})

	r.Left(models.PlayerLeft{PlayerID: "A"})

	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m3"}) {
		t.Errorf("Expected only m3 to survive, got %v", got)
	}
	r.Store().Minions.Each(func(_ string, m *models.Minion) bool {
		if m.OwnerID == "A" || m.OriginalName == "Alice" {
			t.Errorf("Minion %s still tied to the departed player", m.ID)
		}
		return true
	})
	if len(pub.Notices) != 1 || pub.Notices[0].Text != "Alice left the battle." {
		t.Errorf("Expected a leave notice, got %v", pub.Notices)
	}
}

func TestReconciler_LeftUnknownPlayer(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.Store().UpsertMinion(minion("m1", "ghost", "Ghost"))

	r.Left(models.PlayerLeft{PlayerID: "ghost"})

	if r.Store().Minions.Len() != 0 {
		t.Error("Minions owned by an unknown leaving player should still be pruned")
	}
	if len(pub.Notices) != 0 {
		t.Errorf("No notice expected for an unknown player, got %v", pub.Notices)
	}
}

func TestReconciler_EliminatedKeepsDeadRecord(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 1), player("B", "Bob", 1)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "B", "Bob")},
	})

	r.Eliminated(models.PlayerEliminated{PlayerID: "A", EliminatedBy: "Bob"})

	a, ok := r.Store().Players.Get("A")
	if !ok {
		t.Fatal("An eliminated player stays in the store")
	}
	if !a.IsDead {
		t.Error("An eliminated player must be marked dead immediately")
	}
	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m2"}) {
		t.Errorf("Expected Alice's fleet pruned, got %v", got)
	}
	if len(pub.Notices) != 1 || pub.Notices[0].Text != "Alice was eliminated by Bob!" {
		t.Errorf("Expected elimination notice naming the eliminator, got %v", pub.Notices)
	}
}

func TestReconciler_InfectionFleetCap(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 1), player("B", "Bob", 1)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "B", "Bob")},
	})

	r.Infection(models.Infection{
		Winner:       minion("m1", "A", "Alice"),
		Loser:        minion("m2", "B", "Bob"),
		MaxFleetKill: true,
	})

	if _, ok := r.Store().Minions.Get("m2"); ok {
		t.Error("The loser of a fleet cap kill must be removed")
	}
	m1, ok := r.Store().Minions.Get("m1")
	if !ok || m1.OwnerID != "A" {
		t.Errorf("The winner should keep its owner, got %+v", m1)
	}
	if len(pub.Notices) != 1 || !strings.Contains(pub.Notices[0].Text, "(Max fleet size)") {
		t.Errorf("Expected a max fleet notice, got %v", pub.Notices)
	}
	if pub.Notices[0].Effect == "" || pub.Notices[0].X != 100 {
		t.Errorf("Expected an effect at the loser position, got %+v", pub.Notices[0])
	}
}

func TestReconciler_InfectionFlipsOwnership(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 1), player("B", "Bob", 1)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "B", "Bob")},
	})

	r.Infection(models.Infection{
		Winner: minion("m1", "A", "Alice"),
		Loser:  models.MinionState{ID: "m2", OwnerID: models.Ptr("A"), Color: models.Ptr("#f00")},
	})

	m2, ok := r.Store().Minions.Get("m2")
	if !ok {
		t.Fatal("The loser of a normal infection stays, under new ownership")
	}
	if m2.OwnerID != "A" || m2.Color != "#f00" || m2.OriginalName != "Bob" {
		t.Errorf("Expected m2 owned by A in A's color, born Bob, got %+v", m2)
	}
	if pub.Notices[0].Text != "Alice defeated Bob!" {
		t.Errorf("Unexpected notice %q", pub.Notices[0].Text)
	}
}

func TestReconciler_RespawnedClearsFormerFleet(t *testing.T) {
	r, _ := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 2), player("B", "Bob", 1)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "A", "Alice"), minion("m3", "B", "Bob")},
	})

	r.Respawned(models.PlayerRespawned{PlayerID: "A"})

	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m3"}) {
		t.Errorf("Expected only Bob's fleet left, got %v", got)
	}
}

func TestReconciler_NameChangedKeepsOriginalName(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 1)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice")},
	})

	r.NameChanged(models.PlayerNameChanged{PlayerID: "A", OldName: "Alice", NewName: "Sigma Alice"})

	a, _ := r.Store().Players.Get("A")
	if a.Name != "Sigma Alice" {
		t.Errorf("Expected new name, got %s", a.Name)
	}
	m1, _ := r.Store().Minions.Get("m1")
	if m1.OriginalName != "Alice" {
		t.Errorf("Minions keep their birth name, got %s", m1.OriginalName)
	}
	if sweep := r.Cleanup(); sweep.Total() != 0 {
		t.Errorf("Default cleanup must not prune after a rename, removed %+v", sweep)
	}
	if pub.Notices[0].Text != "Alice renamed to Sigma Alice" {
		t.Errorf("Unexpected notice %q", pub.Notices[0].Text)
	}
}

func TestReconciler_CleanupNameHeuristic(t *testing.T) {
	r, _ := newTestReconciler(Options{NameHeuristic: true})
	r.ApplySnapshot(models.GameState{
		Players:    []models.PlayerState{player("A", "Alice", 2)},
		AllMinions: []models.MinionState{minion("m1", "A", "Alice"), minion("m2", "A", "Zed")},
	})

	sweep := r.Cleanup()
	if sweep.ByName != 1 || sweep.ByOwner != 0 {
		t.Errorf("Expected one name prune, got %+v", sweep)
	}
	if got := minionIDs(r); !reflect.DeepEqual(got, []string{"m1"}) {
		t.Errorf("Expected [m1], got %v", got)
	}
}

func TestReconciler_CleanupIsIdempotent(t *testing.T) {
	r, _ := newTestReconciler(Options{NameHeuristic: true})
	r.ApplySnapshot(models.GameState{
		Players: []models.PlayerState{player("A", "Alice", 2), player("B", "Bob", 1)},
		AllMinions: []models.MinionState{
			minion("m1", "A", "Alice"),
			minion("m2", "gone", "Gone"),
			minion("m3", "B", "Bob"),
			minion("m4", "B", "Nobody"),
		},
	})
	b, _ := r.Store().Players.Get("B")
	b.IsDead = true

	first := r.Cleanup()
	after := minionIDs(r)
	second := r.Cleanup()

	if first.ByOwner != 3 {
		t.Errorf("Expected 3 owner prunes (gone owner and dead owner), got %+v", first)
	}
	if second.Total() != 0 {
		t.Errorf("Second pass should remove nothing, removed %+v", second)
	}
	if got := minionIDs(r); !reflect.DeepEqual(got, after) {
		t.Errorf("Store changed between passes: %v vs %v", after, got)
	}
}

func TestReconciler_JoinedAndReset(t *testing.T) {
	r, pub := newTestReconciler(Options{})
	r.Joined(player("A", "Alice", 5))
	r.Store().UpsertMinion(minion("m1", "A", "Alice"))

	if pub.Notices[0].Text != "Alice joined the battle!" {
		t.Errorf("Unexpected join notice %q", pub.Notices[0].Text)
	}

	r.Reset()
	if r.Store().Players.Len() != 0 || r.Store().Minions.Len() != 0 {
		t.Error("Reset should empty both collections")
	}
}
