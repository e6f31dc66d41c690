package store

import (
	"fmt"

	"github.com/wfunc/fleetview/models"
)

// Kind names an entity collection.
type Kind int

const (
	KindPlayer Kind = iota
	KindMinion
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMinion:
		return "minion"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Store holds the mirrored world.
type Store struct {
	Players *Collection[models.Player]
	Minions *Collection[models.Minion]
}

func New() *Store {
	return &Store{
		Players: NewCollection[models.Player](),
		Minions: NewCollection[models.Minion](),
	}
}

func (s *Store) UpsertPlayer(u models.PlayerState) *models.Player {
	return s.Players.Upsert(u.ID, func(p *models.Player, created bool) {
		if created {
			p.ID = u.ID
		}
		p.Apply(u)
	})
}

func (s *Store) UpsertMinion(u models.MinionState) *models.Minion {
	return s.Minions.Upsert(u.ID, func(m *models.Minion, created bool) {
		if created {
			m.ID = u.ID
		}
		m.Apply(u)
	})
}

// Upsert merges a wire state into the collection for kind. record must be a
// models.PlayerState for KindPlayer and a models.MinionState for KindMinion.
func (s *Store) Upsert(kind Kind, record any) error {
	switch kind {
	case KindPlayer:
		u, ok := record.(models.PlayerState)
		if !ok {
			return fmt.Errorf("upsert %s: unexpected record %T", kind, record)
		}
		s.UpsertPlayer(u)
	case KindMinion:
		u, ok := record.(models.MinionState)
		if !ok {
			return fmt.Errorf("upsert %s: unexpected record %T", kind, record)
		}
		s.UpsertMinion(u)
	default:
		return fmt.Errorf("upsert: unknown %s", kind)
	}
	return nil
}

func (s *Store) Remove(kind Kind, id string) bool {
	switch kind {
	case KindPlayer:
		return s.Players.Remove(id)
	case KindMinion:
		return s.Minions.Remove(id)
	}
	return false
}

func (s *Store) Clear(kind Kind) {
	switch kind {
	case KindPlayer:
		s.Players.Clear()
	case KindMinion:
		s.Minions.Clear()
	}
}

// Iterate visits the ids of kind in insertion order.
func (s *Store) Iterate(kind Kind, fn func(id string) bool) {
	switch kind {
	case KindPlayer:
		s.Players.Each(func(id string, _ *models.Player) bool { return fn(id) })
	case KindMinion:
		s.Minions.Each(func(id string, _ *models.Minion) bool { return fn(id) })
	}
}

func (s *Store) Len(kind Kind) int {
	switch kind {
	case KindPlayer:
		return s.Players.Len()
	case KindMinion:
		return s.Minions.Len()
	}
	return 0
}
