package state

import (
	"github.com/wfunc/fleetview/logger"
)

// Client flow phases.
const (
	AtMenu              = "at_menu"
	AwaitingJoinAck     = "awaiting_join_ack"
	InGame              = "in_game"
	AwaitingRespawnName = "awaiting_respawn_name"
)

// phase is a flow state. Its hooks report changes to the flow.
type phase struct {
	id   string
	flow *Flow
}

func (p *phase) GetID() string { return p.id }

func (p *phase) OnEnter() {
	if p.flow.OnChange != nil {
		p.flow.OnChange(p.id)
	}
}

func (p *phase) OnExit() {}

// Flow is the client's menu / join / play / respawn cycle.
type Flow struct {
	sm     *BaseStateMachine
	phases map[string]*phase

	// OnChange, when set, is called with the phase just entered.
	OnChange func(id string)
}

// NewFlow starts at the menu. fleetEmpty reports whether the local player
// currently owns no minions; it guards the fall back to the respawn prompt
// after a refused rename.
func NewFlow(fleetEmpty func() bool) *Flow {
	f := &Flow{phases: make(map[string]*phase)}
	for _, id := range []string{AtMenu, AwaitingJoinAck, InGame, AwaitingRespawnName} {
		f.phases[id] = &phase{id: id, flow: f}
	}
	f.sm = NewBaseStateMachine(f.phases[AtMenu])

	p := f.phases
	_ = f.sm.AddTransition(p[AtMenu], p[AwaitingJoinAck], nil)
	_ = f.sm.AddTransition(p[AwaitingJoinAck], p[InGame], nil)
	_ = f.sm.AddTransition(p[AwaitingJoinAck], p[AtMenu], nil)
	_ = f.sm.AddTransition(p[InGame], p[AwaitingRespawnName], nil)
	_ = f.sm.AddTransition(p[AwaitingRespawnName], p[AwaitingJoinAck], nil)
	_ = f.sm.AddTransition(p[AwaitingJoinAck], p[AwaitingRespawnName], fleetEmpty)
	for _, id := range []string{AwaitingJoinAck, InGame, AwaitingRespawnName} {
		_ = f.sm.AddTransition(p[id], p[AtMenu], nil)
	}
	return f
}

func (f *Flow) Current() string {
	return f.sm.GetCurrentState().GetID()
}

func (f *Flow) Is(id string) bool {
	return f.Current() == id
}

func (f *Flow) to(id string) error {
	from := f.Current()
	if err := f.sm.ChangeState(f.phases[id]); err != nil {
		logger.Log.Debugf("flow %s -> %s refused", from, id)
		return err
	}
	logger.Log.Debugf("flow %s -> %s", from, id)
	return nil
}

// JoinRequested is the join button.
func (f *Flow) JoinRequested() error { return f.to(AwaitingJoinAck) }

// Joined is the first snapshot that carries the local player.
func (f *Flow) Joined() error { return f.to(InGame) }

func (f *Flow) JoinFailed() error { return f.to(AtMenu) }

// Eliminated is player_eliminated for the local player.
func (f *Flow) Eliminated() error { return f.to(AwaitingRespawnName) }

// RespawnSubmitted is the respawn prompt's submit.
func (f *Flow) RespawnSubmitted() error { return f.to(AwaitingJoinAck) }

// NameChangeFailed goes back to the respawn prompt when the local fleet is
// empty. Otherwise the refusal is only reported.
func (f *Flow) NameChangeFailed() error {
	if !f.Is(AwaitingJoinAck) {
		return ErrTransitionNotAllowed
	}
	return f.to(AwaitingRespawnName)
}

// Disconnected returns to the menu from anywhere.
func (f *Flow) Disconnected() {
	if f.Is(AtMenu) {
		return
	}
	_ = f.to(AtMenu)
}
