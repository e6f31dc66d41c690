package monitor

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor("fleetview")
	m.IncMessagesReceived("game_state")
	m.IncMessagesReceived("game_state")
	m.IncMessagesSent("move_player")
	m.AddGhostsPruned("owner", 3)
	m.AddGhostsPruned("name", 0)
	m.SetEntities("minion", 7)
	m.IncMovesDropped()

	if got := testutil.ToFloat64(m.Metrics().MessagesReceived.WithLabelValues("game_state")); got != 2 {
		t.Errorf("Expected 2 game_state messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().GhostsPruned.WithLabelValues("owner")); got != 3 {
		t.Errorf("Expected 3 pruned, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().Entities.WithLabelValues("minion")); got != 7 {
		t.Errorf("Expected 7 minions, got %v", got)
	}
	if got := testutil.ToFloat64(m.Metrics().MovesDropped); got != 1 {
		t.Errorf("Expected 1 dropped move, got %v", got)
	}
}

func TestMonitor_PrivateRegistry(t *testing.T) {
	// two monitors in one process must not collide on registration
	NewMonitor("fleetview")
	NewMonitor("fleetview")
}

func TestMonitor_Router(t *testing.T) {
	m := NewMonitor("fleetview")
	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/world")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first frame, got %d", resp.StatusCode)
	}

	m.PublishWorld(WorldSummary{Phase: "in_game", Players: 2, Minions: 9, At: time.Unix(0, 0)})
	resp, err = http.Get(srv.URL + "/debug/world")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var got WorldSummary
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	resp.Body.Close()
	if got.Phase != "in_game" || got.Minions != 9 {
		t.Errorf("Unexpected summary %+v", got)
	}

	m.IncMessagesSent("join_game")
	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `fleetview_messages_sent_total{event="join_game"} 1`) {
		t.Errorf("Metric missing from exposition:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", resp.StatusCode)
	}
}
