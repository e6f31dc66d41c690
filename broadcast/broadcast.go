// broadcast/broadcast.go
package broadcast

// Kind classifies a notice. The chat feed styles lines by kind.
type Kind string

const (
	KindJoin        Kind = "join"
	KindLeave       Kind = "leave"
	KindElimination Kind = "elimination"
	KindInfection   Kind = "infection"
	KindRename      Kind = "normal"
	KindItem        Kind = "item"
	KindStatus      Kind = "status"
	KindAlert       Kind = "alert"
)

// Notice is something the player should see: a chat line, an effect at a
// world position, or both.
type Notice struct {
	Kind     Kind
	Text     string
	PlayerID string

	// Effect, when set, is floated at (X, Y) in world space.
	Effect string
	X, Y   float64
}

// Publisher is what the reconciler and client publish into.
type Publisher interface {
	Publish(n Notice)
}

// Hub fans notices out to subscribers synchronously on the publishing
// goroutine. Subscribers may filter by kind.
type Hub struct {
	subs []subscription
}

type subscription struct {
	kinds map[Kind]bool
	fn    func(Notice)
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn for the given kinds, or for every kind when none
// are given.
func (h *Hub) Subscribe(fn func(Notice), kinds ...Kind) {
	var set map[Kind]bool
	if len(kinds) > 0 {
		set = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			set[k] = true
		}
	}
	h.subs = append(h.subs, subscription{kinds: set, fn: fn})
}

func (h *Hub) Publish(n Notice) {
	for _, s := range h.subs {
		if s.kinds != nil && !s.kinds[n.Kind] {
			continue
		}
		s.fn(n)
	}
}
