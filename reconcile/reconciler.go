package reconcile

import (
	"fmt"

	"github.com/wfunc/fleetview/broadcast"
	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
)

// Options tunes ghost detection.
type Options struct {
	// NameHeuristic also prunes minions whose original name matches no live
	// player. Off by default: a rename would otherwise wipe the renamer's
	// own fleet until the next snapshot.
	NameHeuristic bool
}

// Sweep counts what one Cleanup pass removed.
type Sweep struct {
	ByOwner int
	ByName  int
}

func (s Sweep) Total() int { return s.ByOwner + s.ByName }

// Reconciler applies server messages to the entity store. Every method runs
// on the client loop goroutine.
type Reconciler struct {
	store  *store.Store
	pub    broadcast.Publisher
	opts   Options
	world  models.World
	schema models.Schema
}

func New(s *store.Store, pub broadcast.Publisher, opts Options) *Reconciler {
	return &Reconciler{
		store: s,
		pub:   pub,
		opts:  opts,
		world: models.DefaultWorld,
	}
}

func (r *Reconciler) Store() *store.Store   { return r.store }
func (r *Reconciler) World() models.World   { return r.world }
func (r *Reconciler) Schema() models.Schema { return r.schema }

// ResetSchema forgets the resolved schema; a new connection may talk to a
// different server generation.
func (r *Reconciler) ResetSchema() {
	r.schema = models.SchemaUnknown
}

func (r *Reconciler) resolveSchema(players []models.PlayerState) {
	if r.schema != models.SchemaUnknown {
		return
	}
	if s := models.DetectSchema(players); s != models.SchemaUnknown {
		r.schema = s
		logger.Log.Infof("Resolved player schema: %s", s)
	}
}

// ApplySnapshot replaces the whole world with gs.
func (r *Reconciler) ApplySnapshot(gs models.GameState) {
	if gs.World.Width > 0 && gs.World.Height > 0 {
		r.world = gs.World
	}
	r.store.Clear(store.KindPlayer)
	r.store.Clear(store.KindMinion)

	r.resolveSchema(gs.Players)
	for _, p := range gs.Players {
		r.store.UpsertPlayer(p)
	}
	for _, m := range gs.AllMinions {
		r.store.UpsertMinion(m)
	}
}

// ApplyPlayers merges update_players.
func (r *Reconciler) ApplyPlayers(players []models.PlayerState) {
	r.resolveSchema(players)
	for _, p := range players {
		r.store.UpsertPlayer(p)
	}
}

// ApplyDelta merges update_game_state. When the delta carries a minion list,
// held minions missing from it are dropped before the listed ones are
// merged. A delta without all_minions leaves minions alone.
func (r *Reconciler) ApplyDelta(d models.GameStateDelta) {
	r.ApplyPlayers(d.Players)
	if d.AllMinions == nil {
		return
	}

	listed := make(map[string]struct{}, len(d.AllMinions))
	for _, m := range d.AllMinions {
		listed[m.ID] = struct{}{}
	}
	removed := r.store.Minions.RemoveWhere(func(id string, _ *models.Minion) bool {
		_, ok := listed[id]
		return !ok
	})
	if len(removed) > 0 {
		logger.Log.Debugf("Delta dropped %d minions", len(removed))
	}
	for _, m := range d.AllMinions {
		r.store.UpsertMinion(m)
	}
}

func (r *Reconciler) Joined(p models.PlayerState) {
	rec := r.store.UpsertPlayer(p)
	r.pub.Publish(broadcast.Notice{
		Kind:     broadcast.KindJoin,
		Text:     fmt.Sprintf("%s joined the battle!", displayName(rec)),
		PlayerID: rec.ID,
	})
}

// Left removes the player and every minion tied to it by owner or by
// original name.
func (r *Reconciler) Left(e models.PlayerLeft) {
	p, ok := r.store.Players.Get(e.PlayerID)
	name := ""
	if ok {
		name = p.Name
		r.pub.Publish(broadcast.Notice{
			Kind:     broadcast.KindLeave,
			Text:     fmt.Sprintf("%s left the battle.", displayName(p)),
			PlayerID: e.PlayerID,
		})
	}
	n := r.pruneFleet(e.PlayerID, name)
	r.store.Players.Remove(e.PlayerID)
	logger.Log.Debugf("Player %s left, pruned %d minions", e.PlayerID, n)
}

// Eliminated marks the player dead right away and prunes its fleet. The
// record stays until a snapshot drops it.
func (r *Reconciler) Eliminated(e models.PlayerEliminated) {
	p, ok := r.store.Players.Get(e.PlayerID)
	name := ""
	if ok {
		p.IsDead = true
		name = p.Name
		text := fmt.Sprintf("%s was eliminated!", displayName(p))
		if e.EliminatedBy != "" {
			text = fmt.Sprintf("%s was eliminated by %s!", displayName(p), e.EliminatedBy)
		}
		r.pub.Publish(broadcast.Notice{
			Kind:     broadcast.KindElimination,
			Text:     text,
			PlayerID: e.PlayerID,
		})
	}
	n := r.pruneFleet(e.PlayerID, name)
	logger.Log.Debugf("Player %s eliminated, pruned %d minions", e.PlayerID, n)
}

// NameChanged renames the player. Minions keep the name they were born with.
func (r *Reconciler) NameChanged(e models.PlayerNameChanged) {
	p, ok := r.store.Players.Get(e.PlayerID)
	if !ok {
		return
	}
	p.Name = e.NewName
	r.pub.Publish(broadcast.Notice{
		Kind:     broadcast.KindRename,
		Text:     fmt.Sprintf("%s renamed to %s", e.OldName, e.NewName),
		PlayerID: e.PlayerID,
	})
}

// Infection applies the outcome of a minion contest. A fleet cap kill
// destroys the loser; otherwise both records are merged since ownership or
// color may have flipped.
func (r *Reconciler) Infection(inf models.Infection) {
	winnerName := r.minionName(inf.Winner)
	loserName := r.minionName(inf.Loser)
	x, y := r.minionPos(inf.Loser)

	r.store.UpsertMinion(inf.Winner)

	var text string
	if inf.MaxFleetKill {
		r.store.Minions.Remove(inf.Loser.ID)
		text = fmt.Sprintf("%s destroyed %s! (Max fleet size)", winnerName, loserName)
	} else {
		r.store.UpsertMinion(inf.Loser)
		text = fmt.Sprintf("%s defeated %s!", winnerName, loserName)
	}
	r.pub.Publish(broadcast.Notice{
		Kind:   broadcast.KindInfection,
		Text:   text,
		Effect: "💀",
		X:      x,
		Y:      y,
	})
}

// Respawned drops the player's former fleet; the next snapshot brings the
// new one.
func (r *Reconciler) Respawned(e models.PlayerRespawned) {
	removed := r.store.Minions.RemoveWhere(func(_ string, m *models.Minion) bool {
		return m.OwnerID == e.PlayerID
	})
	logger.Log.Debugf("Player %s respawned, cleared %d minions", e.PlayerID, len(removed))
}

// Reset drops every entity.
func (r *Reconciler) Reset() {
	r.store.Clear(store.KindPlayer)
	r.store.Clear(store.KindMinion)
}

// Cleanup removes ghost minions: those whose owner is gone or dead and, with
// the name heuristic on, those whose original name matches no live player.
// Running it twice without a mutation in between removes nothing the second
// time.
func (r *Reconciler) Cleanup() Sweep {
	live := make(map[string]struct{}, r.store.Players.Len())
	names := make(map[string]struct{}, r.store.Players.Len())
	r.store.Players.Each(func(id string, p *models.Player) bool {
		if !p.IsDead {
			live[id] = struct{}{}
			names[p.Name] = struct{}{}
		}
		return true
	})

	var sweep Sweep
	r.store.Minions.RemoveWhere(func(id string, m *models.Minion) bool {
		if _, ok := live[m.OwnerID]; !ok {
			sweep.ByOwner++
			logger.Log.Debugf("Removing ghost minion %s with invalid owner %s", id, m.OwnerID)
			return true
		}
		if r.opts.NameHeuristic {
			if _, ok := names[m.OriginalName]; !ok {
				sweep.ByName++
				logger.Log.Debugf("Removing ghost minion %s with stale original name %q", id, m.OriginalName)
				return true
			}
		}
		return false
	})
	return sweep
}

func (r *Reconciler) pruneFleet(playerID, name string) int {
	removed := r.store.Minions.RemoveWhere(func(_ string, m *models.Minion) bool {
		return m.OwnerID == playerID || (name != "" && m.OriginalName == name)
	})
	return len(removed)
}

func (r *Reconciler) minionName(u models.MinionState) string {
	if u.OriginalName != nil {
		return *u.OriginalName
	}
	if m, ok := r.store.Minions.Get(u.ID); ok && m.OriginalName != "" {
		return m.OriginalName
	}
	return "Someone"
}

func (r *Reconciler) minionPos(u models.MinionState) (float64, float64) {
	var x, y float64
	if m, ok := r.store.Minions.Get(u.ID); ok {
		x, y = m.X, m.Y
	}
	if u.X != nil {
		x = *u.X
	}
	if u.Y != nil {
		y = *u.Y
	}
	return x, y
}

func displayName(p *models.Player) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
