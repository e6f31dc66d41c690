package models

import (
	"bytes"
	"encoding/json"
)

// Nullable is a float that distinguishes an absent field from an explicit
// null, which clears the value.
type Nullable struct {
	Present bool
	Value   *float64
}

func NullableOf(v float64) Nullable {
	return Nullable{Present: true, Value: &v}
}

func (n *Nullable) UnmarshalJSON(b []byte) error {
	n.Present = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// PlayerState is a player as it appears on the wire. Absent fields stay nil
// so an update only touches what it carries.
type PlayerState struct {
	ID                string   `json:"id"`
	Name              *string  `json:"name,omitempty"`
	X                 *float64 `json:"x,omitempty"`
	Y                 *float64 `json:"y,omitempty"`
	Size              *float64 `json:"size,omitempty"`
	MinionCount       *int     `json:"minion_count,omitempty"`
	FleetCenterX      *float64 `json:"fleet_center_x,omitempty"`
	FleetCenterY      *float64 `json:"fleet_center_y,omitempty"`
	Color             *string  `json:"color,omitempty"`
	IsDead            *bool    `json:"is_dead,omitempty"`
	InvulnerableUntil Nullable `json:"invulnerable_until"`
}

// MinionState is a minion as it appears on the wire.
type MinionState struct {
	ID             string   `json:"id"`
	OwnerID        *string  `json:"owner_id,omitempty"`
	OriginalName   *string  `json:"original_name,omitempty"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
	Size           *float64 `json:"size,omitempty"`
	Color          *string  `json:"color,omitempty"`
	IsInvulnerable *bool    `json:"is_invulnerable,omitempty"`
}

// DetectSchema resolves the record generation from the first player that
// carries either progression field. SchemaUnknown means undecided.
func DetectSchema(players []PlayerState) Schema {
	for _, p := range players {
		if p.MinionCount != nil || p.FleetCenterX != nil || p.FleetCenterY != nil {
			return SchemaFleetBased
		}
		if p.Size != nil {
			return SchemaSizeBased
		}
	}
	return SchemaUnknown
}

// GameState is the full snapshot (game_state).
type GameState struct {
	World      World         `json:"world"`
	Players    []PlayerState `json:"players"`
	AllMinions []MinionState `json:"all_minions"`
}

// GameStateDelta is update_game_state. Its minion list replaces the held
// minion set by diff.
type GameStateDelta struct {
	Players    []PlayerState `json:"players"`
	AllMinions []MinionState `json:"all_minions"`
}

type PlayerLeft struct {
	PlayerID string `json:"player_id"`
}

type PlayerEliminated struct {
	PlayerID     string `json:"player_id"`
	EliminatedBy string `json:"eliminated_by,omitempty"`
}

type PlayerRespawned struct {
	PlayerID string `json:"player_id"`
}

type PlayerNameChanged struct {
	PlayerID string `json:"player_id"`
	OldName  string `json:"old_name"`
	NewName  string `json:"new_name"`
}

// Infection covers infection_happened and the older minion_infection, which
// never sets MaxFleetKill.
type Infection struct {
	Winner       MinionState `json:"winner"`
	Loser        MinionState `json:"loser"`
	MaxFleetKill bool        `json:"max_fleet_kill"`
}

// Failure is join_failed and name_change_failed.
type Failure struct {
	Message string `json:"message"`
}

type ItemSpawned struct {
	Item SpecialItem `json:"item"`
}

type ItemRemoved struct {
	ItemID string `json:"item_id"`
}

// Outbound payloads.

type JoinGame struct {
	Name string `json:"name"`
}

type MovePlayer struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type ChangeName struct {
	Name                    string `json:"name"`
	FromAdjectiveCollection bool   `json:"from_adjective_collection,omitempty"`
	ItemID                  string `json:"item_id,omitempty"`
}

type RespawnPlayer struct{}

type Heartbeat struct {
	Time int64 `json:"time"`
}

// Ptr returns a pointer to v, for building partial wire states.
func Ptr[T any](v T) *T {
	return &v
}
