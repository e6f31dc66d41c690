package models

// Schema is the player record generation a server speaks. It is resolved
// once per connection from the first snapshot carrying a player.
type Schema int

const (
	SchemaUnknown Schema = iota
	SchemaSizeBased
	SchemaFleetBased
)

func (s Schema) String() string {
	switch s {
	case SchemaSizeBased:
		return "size"
	case SchemaFleetBased:
		return "fleet"
	default:
		return "unknown"
	}
}

// World is the playfield size in world units.
type World struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultWorld is used until the first snapshot announces the real size.
var DefaultWorld = World{Width: 2000, Height: 1500}

// Vec is a point in world units.
type Vec struct {
	X, Y float64
}

// Player is the local mirror of a server player.
type Player struct {
	ID                string
	Name              string
	X, Y              float64
	Size              float64
	MinionCount       int
	FleetCenterX      float64
	FleetCenterY      float64
	Color             string
	IsDead            bool
	InvulnerableUntil *float64
}

// Anchor is the point the camera centres on.
func (p *Player) Anchor(s Schema) Vec {
	if s == SchemaFleetBased {
		return Vec{X: p.FleetCenterX, Y: p.FleetCenterY}
	}
	return Vec{X: p.X, Y: p.Y}
}

// Metric is the progression value: minion count or blob size.
func (p *Player) Metric(s Schema) float64 {
	if s == SchemaFleetBased {
		return float64(p.MinionCount)
	}
	return p.Size
}

// Apply copies every field u carries.
func (p *Player) Apply(u PlayerState) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.X != nil {
		p.X = *u.X
	}
	if u.Y != nil {
		p.Y = *u.Y
	}
	if u.Size != nil {
		p.Size = *u.Size
	}
	if u.MinionCount != nil {
		p.MinionCount = *u.MinionCount
	}
	if u.FleetCenterX != nil {
		p.FleetCenterX = *u.FleetCenterX
	}
	if u.FleetCenterY != nil {
		p.FleetCenterY = *u.FleetCenterY
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.IsDead != nil {
		p.IsDead = *u.IsDead
	}
	if u.InvulnerableUntil.Present {
		if u.InvulnerableUntil.Value == nil {
			p.InvulnerableUntil = nil
		} else {
			v := *u.InvulnerableUntil.Value
			p.InvulnerableUntil = &v
		}
	}
}

// Invulnerable reports whether the spawn shield is still up at now (unix
// seconds).
func (p *Player) Invulnerable(now float64) bool {
	return p.InvulnerableUntil != nil && *p.InvulnerableUntil > now
}

// Minion is one member of a fleet.
type Minion struct {
	ID             string
	OwnerID        string
	OriginalName   string
	X, Y           float64
	Size           float64
	Color          string
	IsInvulnerable bool
}

func (m *Minion) Apply(u MinionState) {
	if u.OwnerID != nil {
		m.OwnerID = *u.OwnerID
	}
	if u.OriginalName != nil {
		m.OriginalName = *u.OriginalName
	}
	if u.X != nil {
		m.X = *u.X
	}
	if u.Y != nil {
		m.Y = *u.Y
	}
	if u.Size != nil {
		m.Size = *u.Size
	}
	if u.Color != nil {
		m.Color = *u.Color
	}
	if u.IsInvulnerable != nil {
		m.IsInvulnerable = *u.IsInvulnerable
	}
}

// SpecialItem is a server announced pickup carrying an adjective.
type SpecialItem struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Type      string  `json:"type"`
	Adjective string  `json:"adjective"`
	Collected bool    `json:"collected"`
	SpawnTime float64 `json:"spawn_time"` // unix seconds
	ExpiresAt float64 `json:"-"`
}
