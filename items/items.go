package items

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/store"
)

var (
	ErrUnknownAdjective = errors.New("unknown adjective")
	ErrDuplicateItem    = errors.New("duplicate item")
)

const (
	DefaultTTL    = 30 * time.Second
	DefaultRadius = 30.0
)

// Pickup is a collection the local fleet made this frame. Request is what
// gets sent to the server, which has the final word.
type Pickup struct {
	Item    models.SpecialItem
	Request models.ChangeName
}

// Tracker mirrors the special items the server announced.
type Tracker struct {
	ttl    time.Duration
	radius float64
	items  *store.Collection[models.SpecialItem]
}

func NewTracker(ttl time.Duration, radius float64) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Tracker{
		ttl:    ttl,
		radius: radius,
		items:  store.NewCollection[models.SpecialItem](),
	}
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Spawned records a new item. Items without a spawn time are stamped with
// now.
func (t *Tracker) Spawned(item models.SpecialItem, now time.Time) error {
	if !IsAdjective(item.Adjective) {
		return fmt.Errorf("%w: %q", ErrUnknownAdjective, item.Adjective)
	}
	if _, ok := t.items.Get(item.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	if item.SpawnTime == 0 {
		item.SpawnTime = unix(now)
	}
	item.ExpiresAt = item.SpawnTime + t.ttl.Seconds()
	t.items.Upsert(item.ID, func(rec *models.SpecialItem, _ bool) {
		*rec = item
	})
	return nil
}

func (t *Tracker) Removed(id string) bool {
	return t.items.Remove(id)
}

// Expire drops items whose lifetime ended and returns their ids.
func (t *Tracker) Expire(now time.Time) []string {
	ts := unix(now)
	return t.items.RemoveWhere(func(_ string, it *models.SpecialItem) bool {
		return ts >= it.ExpiresAt
	})
}

// Detect looks for the first uncollected item touched by a minion owned by
// myID. The item is marked collected and dropped from the tracker.
func (t *Tracker) Detect(myID string, s *store.Store) (*Pickup, bool) {
	me, ok := s.Players.Get(myID)
	if !ok || myID == "" {
		return nil, false
	}

	var hit *models.SpecialItem
	t.items.Each(func(_ string, it *models.SpecialItem) bool {
		if it.Collected {
			return true
		}
		s.Minions.Each(func(_ string, m *models.Minion) bool {
			if m.OwnerID != myID {
				return true
			}
			if math.Hypot(it.X-m.X, it.Y-m.Y) < t.radius {
				hit = it
				return false
			}
			return true
		})
		return hit == nil
	})
	if hit == nil {
		return nil, false
	}

	hit.Collected = true
	p := &Pickup{
		Item: *hit,
		Request: models.ChangeName{
			Name:                    NameWith(hit.Adjective, me.Name),
			FromAdjectiveCollection: true,
			ItemID:                  hit.ID,
		},
	}
	t.items.Remove(hit.ID)
	return p, true
}

// NameWith prefixes name with adjective.
func NameWith(adjective, name string) string {
	if name == "" {
		return adjective
	}
	return adjective + " " + name
}

// Items returns the live items in spawn order.
func (t *Tracker) Items() []models.SpecialItem {
	out := make([]models.SpecialItem, 0, t.items.Len())
	t.items.Each(func(_ string, it *models.SpecialItem) bool {
		if !it.Collected {
			out = append(out, *it)
		}
		return true
	})
	return out
}

func (t *Tracker) Len() int { return t.items.Len() }

func (t *Tracker) Clear() { t.items.Clear() }
