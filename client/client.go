package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wfunc/fleetview/broadcast"
	"github.com/wfunc/fleetview/camera"
	"github.com/wfunc/fleetview/chat"
	"github.com/wfunc/fleetview/config"
	"github.com/wfunc/fleetview/items"
	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/monitor"
	"github.com/wfunc/fleetview/network"
	"github.com/wfunc/fleetview/reconcile"
	"github.com/wfunc/fleetview/render"
	"github.com/wfunc/fleetview/session"
	"github.com/wfunc/fleetview/state"
	"github.com/wfunc/fleetview/store"
	"github.com/wfunc/fleetview/timer"
	"github.com/wfunc/fleetview/view"
	"golang.org/x/time/rate"
)

var ErrDisconnected = errors.New("disconnected")

const effectTTL = 2 * time.Second

// DialFunc opens the game connection.
type DialFunc func(ctx context.Context, url string, header http.Header) (network.Connection, error)

func dialWebsocket(ctx context.Context, url string, header http.Header) (network.Connection, error) {
	return network.Dial(ctx, url, header)
}

type Options struct {
	// Backend draws frames. Nil builds the one the config names.
	Backend render.Backend
	// Monitor receives metrics and the world summary. Nil creates a private
	// one that is never served.
	Monitor *monitor.Monitor
	Dial    DialFunc
	Clock   func() time.Time
}

// Client mirrors one game session. Everything but the command methods runs
// on the goroutine that called Run.
type Client struct {
	cfg   *config.Config
	clock func() time.Time
	dial  DialFunc

	sess    *session.Session
	myID    string
	status  string
	store   *store.Store
	hub     *broadcast.Hub
	rec     *reconcile.Reconciler
	cam     *camera.Camera
	variant camera.Variant
	minimap view.Minimap
	flow    *state.Flow
	feed    *chat.Feed
	items   *items.Tracker
	effects *view.Effects
	timers  *timer.TimerManager
	limiter *rate.Limiter
	backend render.Backend
	mon     *monitor.Monitor

	packets  chan *network.Packet
	readErr  chan error
	commands chan command
}

func New(cfg *config.Config, opts Options) (*Client, error) {
	variant, err := cameraVariant(cfg.Camera)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		clock:    opts.Clock,
		dial:     opts.Dial,
		store:    store.New(),
		hub:      broadcast.NewHub(),
		variant:  variant,
		cam:      camera.New(variant, cfg.Viewport.Width, cfg.Viewport.Height),
		feed:     chat.NewFeed(cfg.Chat.Window, cfg.Chat.MaxLines),
		items:    items.NewTracker(cfg.Items.TTL, cfg.Items.CollectRadius),
		effects:  view.NewEffects(effectTTL),
		limiter:  rate.NewLimiter(rate.Limit(cfg.Input.MoveRate), cfg.Input.MoveBurst),
		mon:      opts.Monitor,
		packets:  make(chan *network.Packet, 256),
		readErr:  make(chan error, 1),
		commands: make(chan command, 64),
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.dial == nil {
		c.dial = dialWebsocket
	}
	if c.mon == nil {
		c.mon = monitor.NewMonitor("fleetview")
	}
	c.timers = timer.NewTimerManager(c.clock)
	c.rec = reconcile.New(c.store, c.hub, reconcile.Options{NameHeuristic: cfg.Cleanup.NameHeuristic})
	c.flow = state.NewFlow(c.fleetEmpty)
	c.flow.OnChange = func(id string) { logger.Log.Infof("Client state: %s", id) }
	c.minimap = view.NewMinimap(cfg.Minimap.Width, cfg.Minimap.Height, c.rec.World())

	c.feed.Attach(c.hub, c.clock)
	c.hub.Subscribe(func(n broadcast.Notice) {
		if n.Effect != "" {
			c.effects.Add(n.Effect, n.X, n.Y, c.clock())
		}
	})
	c.hub.Subscribe(func(n broadcast.Notice) {
		c.status = n.Text
		if c.sess != nil {
			c.sess.SetStatus(n.Text)
		}
		if n.Kind == broadcast.KindAlert {
			logger.Log.Warnf("%s", n.Text)
		}
	}, broadcast.KindStatus, broadcast.KindAlert)

	c.backend = opts.Backend
	if c.backend == nil {
		c.backend, err = render.New(cfg.Render, cfg.Viewport.Width, cfg.Viewport.Height, c)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// cameraVariant resolves the preset and applies explicit overrides.
func cameraVariant(cfg config.CameraConfig) (camera.Variant, error) {
	v, err := camera.Lookup(cfg.Variant)
	if err != nil {
		return camera.Variant{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	if cfg.K != 0 {
		v.K = cfg.K
	}
	if cfg.ZoomMin != 0 {
		v.ZoomMin = cfg.ZoomMin
	}
	if cfg.ZoomMax != 0 {
		v.ZoomMax = cfg.ZoomMax
	}
	if cfg.Baseline != 0 {
		v.Baseline = cfg.Baseline
	}
	if err := v.Validate(); err != nil {
		return camera.Variant{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return v, nil
}

// fleetEmpty reports whether the local player has nothing left in play under
// the schema the server speaks.
func (c *Client) fleetEmpty() bool {
	me, ok := c.store.Players.Get(c.myID)
	return !ok || me.Metric(c.rec.Schema()) <= 0
}

func (c *Client) setStatus(text string) {
	c.hub.Publish(broadcast.Notice{Kind: broadcast.KindStatus, Text: text})
}

func (c *Client) alert(text string) {
	c.hub.Publish(broadcast.Notice{Kind: broadcast.KindAlert, Text: text})
}

// Run connects and drives the client until ctx ends, the user quits or the
// connection drops. There is no reconnect.
func (c *Client) Run(ctx context.Context) error {
	defer c.backend.Close()

	id := session.NewID()
	logger.Log.Infof("Connecting to %s", c.cfg.Server.URL)
	conn, err := c.dial(ctx, c.cfg.Server.URL, session.Header(id))
	if err != nil {
		c.setStatus(session.FailureStatus(err))
		return fmt.Errorf("connect: %w", err)
	}
	c.sess = session.NewSession(id, conn)
	c.myID = id
	defer c.sess.Close()
	c.setStatus(session.StatusConnected)
	logger.Log.Infof("Connected as %s", id)

	if hb := c.cfg.Server.Heartbeat; hb > 0 {
		conn.SetHeartbeat(hb)
		c.timers.AddTimer(hb, hb, c.sendHeartbeat)
	}
	c.timers.AddTimer(0, time.Second, c.refreshGauges)

	readCtx, stopReader := context.WithCancel(ctx)
	defer stopReader()
	go c.readLoop(readCtx, conn)

	if name := c.cfg.Server.Name; name != "" {
		c.join(name)
	}

	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Render.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-c.packets:
			c.handlePacket(p)
		case err := <-c.readErr:
			c.disconnected()
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		case cmd := <-c.commands:
			if !c.handleCommand(cmd) {
				return nil
			}
		case <-ticker.C:
			if !c.frame(c.clock()) {
				return nil
			}
		}
	}
}

// readLoop only decodes frames; every packet is handled on the Run goroutine.
func (c *Client) readLoop(ctx context.Context, conn network.Connection) {
	for {
		p, err := conn.ReadPacket()
		if err != nil {
			if errors.Is(err, network.ErrShortPacket) {
				logger.Log.Warnf("Dropping malformed packet: %v", err)
				continue
			}
			select {
			case c.readErr <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case c.packets <- p:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) disconnected() {
	c.setStatus(session.StatusDisconnected)
	c.flow.Disconnected()
	c.rec.Reset()
	c.rec.ResetSchema()
	c.items.Clear()
}

func (c *Client) send(event string, payload any) {
	if c.sess == nil {
		return
	}
	if err := c.sess.Send(event, payload); err != nil {
		logger.Log.Errorf("Failed to send %s: %v", event, err)
		return
	}
	c.mon.IncMessagesSent(event)
}

func (c *Client) sendHeartbeat() {
	c.send("heartbeat", models.Heartbeat{Time: c.clock().UnixMilli()})
}

func (c *Client) refreshGauges() {
	c.mon.SetEntities(store.KindPlayer.String(), c.store.Len(store.KindPlayer))
	c.mon.SetEntities(store.KindMinion.String(), c.store.Len(store.KindMinion))
	c.mon.SetEntities("item", c.items.Len())
}

// frame runs one render tick. It returns false once the backend is gone.
func (c *Client) frame(now time.Time) bool {
	start := time.Now()

	sweep := c.rec.Cleanup()
	c.mon.AddGhostsPruned("owner", sweep.ByOwner)
	c.mon.AddGhostsPruned("name", sweep.ByName)

	c.items.Expire(now)
	if c.flow.Is(state.InGame) {
		if p, ok := c.items.Detect(c.myID, c.store); ok {
			c.send("change_name", p.Request)
			c.hub.Publish(broadcast.Notice{
				Kind:     broadcast.KindItem,
				Text:     fmt.Sprintf("🎁 You found the %s power!", p.Item.Adjective),
				PlayerID: c.myID,
				Effect:   fmt.Sprintf("✨ %s ✨", p.Item.Adjective),
				X:        p.Item.X,
				Y:        p.Item.Y,
			})
		}
	}
	c.timers.Advance(now)

	schema := c.rec.Schema()
	c.cam.SetVariant(c.variant.BaselineFor(schema))
	if me, ok := c.store.Players.Get(c.myID); ok && !me.IsDead {
		c.cam.Follow(me.Anchor(schema), me.Metric(schema))
	}
	c.minimap.World = c.rec.World()
	c.effects.Prune(now)

	baseW, baseH := c.cam.Base()
	v := c.cam.View()
	f := render.Compose(render.Scene{
		Store:   c.store,
		Schema:  schema,
		World:   c.rec.World(),
		MyID:    c.myID,
		View:    v,
		BaseW:   baseW,
		BaseH:   baseH,
		Minimap: c.minimap,
		Items:   c.items.Items(),
		Effects: c.effects.Place(view.NewProjector(v, baseW, baseH), now),
		Chat:    c.feed.Lines(),
		Phase:   c.flow.Current(),
		Status:  c.status,
		Now:     float64(now.UnixNano()) / float64(time.Second),
	})
	if err := c.backend.Draw(f); err != nil {
		if errors.Is(err, render.ErrClosed) {
			return false
		}
		logger.Log.Errorf("Draw failed: %v", err)
	}

	c.mon.ObserveFrame(time.Since(start))
	c.mon.PublishWorld(monitor.WorldSummary{
		Phase:    c.flow.Current(),
		PlayerID: c.myID,
		Schema:   schema.String(),
		Players:  c.store.Len(store.KindPlayer),
		Minions:  c.store.Len(store.KindMinion),
		Items:    c.items.Len(),
		Zoom:     v.Zoom,
		View:     [4]float64{v.X, v.Y, v.W, v.H},
		Status:   c.status,
		At:       now,
	})
	return true
}
