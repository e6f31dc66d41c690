package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MsgTypeHeartbeat = 1

	// client -> server
	MsgTypeJoinGame      = 101
	MsgTypeMovePlayer    = 102
	MsgTypeChangeName    = 103
	MsgTypeRespawnPlayer = 104

	// server -> client
	MsgTypeGameState          = 301
	MsgTypeUpdatePlayers      = 302
	MsgTypeUpdateGameState    = 303
	MsgTypePlayerJoined       = 304
	MsgTypePlayerLeft         = 305
	MsgTypePlayerEliminated   = 306
	MsgTypePlayerRespawned    = 307
	MsgTypePlayerNameChanged  = 308
	MsgTypeInfectionHappened  = 309
	MsgTypeMinionInfection    = 310
	MsgTypeJoinFailed         = 311
	MsgTypeNameChangeFailed   = 312
	MsgTypeSpecialItemSpawned = 313
	MsgTypeSpecialItemRemoved = 314
)

var ErrUnknownEvent = errors.New("unknown event")

var eventIDs = map[string]uint16{
	"heartbeat":            MsgTypeHeartbeat,
	"join_game":            MsgTypeJoinGame,
	"move_player":          MsgTypeMovePlayer,
	"change_name":          MsgTypeChangeName,
	"respawn_player":       MsgTypeRespawnPlayer,
	"game_state":           MsgTypeGameState,
	"update_players":       MsgTypeUpdatePlayers,
	"update_game_state":    MsgTypeUpdateGameState,
	"player_joined":        MsgTypePlayerJoined,
	"player_left":          MsgTypePlayerLeft,
	"player_eliminated":    MsgTypePlayerEliminated,
	"player_respawned":     MsgTypePlayerRespawned,
	"player_name_changed":  MsgTypePlayerNameChanged,
	"infection_happened":   MsgTypeInfectionHappened,
	"minion_infection":     MsgTypeMinionInfection,
	"join_failed":          MsgTypeJoinFailed,
	"name_change_failed":   MsgTypeNameChangeFailed,
	"special_item_spawned": MsgTypeSpecialItemSpawned,
	"special_item_removed": MsgTypeSpecialItemRemoved,
}

var eventNames = func() map[uint16]string {
	m := make(map[uint16]string, len(eventIDs))
	for name, id := range eventIDs {
		m[id] = name
	}
	return m
}()

func MsgID(event string) (uint16, error) {
	id, ok := eventIDs[event]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return id, nil
}

func EventName(msgID uint16) (string, error) {
	name, ok := eventNames[msgID]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownEvent, msgID)
	}
	return name, nil
}

// Marshal resolves event and JSON encodes payload for Send.
func Marshal(event string, payload any) (uint16, []byte, error) {
	id, err := MsgID(event)
	if err != nil {
		return 0, nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s: %w", event, err)
	}
	return id, data, nil
}
