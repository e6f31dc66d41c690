// monitor/monitor.go
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wfunc/fleetview/logger"
)

type Metrics struct {
	MessagesReceived *prometheus.CounterVec
	MessagesSent     *prometheus.CounterVec
	GhostsPruned     *prometheus.CounterVec
	Entities         *prometheus.GaugeVec
	FrameDuration    prometheus.Histogram
	MovesDropped     prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Messages received from the game server",
		}, []string{"event"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages sent to the game server",
		}, []string{"event"}),
		GhostsPruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ghosts_pruned_total",
			Help:      "Minions removed because their owner is gone",
		}, []string{"reason"}),
		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Entities held by the local store",
		}, []string{"kind"}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent building and drawing one frame",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		MovesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_dropped_total",
			Help:      "move_player commands dropped by the rate limiter",
		}),
	}

	reg.MustRegister(
		m.MessagesReceived,
		m.MessagesSent,
		m.GhostsPruned,
		m.Entities,
		m.FrameDuration,
		m.MovesDropped,
	)

	return m
}

// WorldSummary is what /debug/world serves. The client loop publishes a new
// one every frame.
type WorldSummary struct {
	Phase    string     `json:"phase"`
	PlayerID string     `json:"player_id"`
	Schema   string     `json:"schema"`
	Players  int        `json:"players"`
	Minions  int        `json:"minions"`
	Items    int        `json:"items"`
	Zoom     float64    `json:"zoom"`
	View     [4]float64 `json:"view"`
	Status   string     `json:"status"`
	At       time.Time  `json:"at"`
}

type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
	world     atomic.Pointer[WorldSummary]
	server    *http.Server
}

func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Router serves the debug endpoints.
func (m *Monitor) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"uptime": time.Since(m.startTime).Seconds(),
		})
	})
	r.Get("/debug/world", func(w http.ResponseWriter, _ *http.Request) {
		s := m.world.Load()
		if s == nil {
			http.Error(w, "no frame yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	})
	return r
}

// StartServer serves Router on addr in the background.
func (m *Monitor) StartServer(addr string) {
	m.server = &http.Server{
		Addr:              addr,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("monitor server on %s: %v", addr, err)
		}
	}()
	logger.Log.Infof("monitor listening on %s", addr)
}

func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

func (m *Monitor) PublishWorld(s WorldSummary) {
	m.world.Store(&s)
}

func (m *Monitor) World() (WorldSummary, bool) {
	s := m.world.Load()
	if s == nil {
		return WorldSummary{}, false
	}
	return *s, true
}

func (m *Monitor) IncMessagesReceived(event string) {
	m.metrics.MessagesReceived.WithLabelValues(event).Inc()
}

func (m *Monitor) IncMessagesSent(event string) {
	m.metrics.MessagesSent.WithLabelValues(event).Inc()
}

func (m *Monitor) AddGhostsPruned(reason string, n int) {
	if n > 0 {
		m.metrics.GhostsPruned.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Monitor) SetEntities(kind string, n int) {
	m.metrics.Entities.WithLabelValues(kind).Set(float64(n))
}

func (m *Monitor) ObserveFrame(duration time.Duration) {
	m.metrics.FrameDuration.Observe(duration.Seconds())
}

func (m *Monitor) IncMovesDropped() {
	m.metrics.MovesDropped.Inc()
}
