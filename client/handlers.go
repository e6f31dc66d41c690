package client

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/network"
	"github.com/wfunc/fleetview/state"
)

func decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func (c *Client) handlePacket(p *network.Packet) {
	event, err := network.EventName(p.MsgID)
	if err != nil {
		logger.Log.Warnf("Ignoring packet: %v", err)
		return
	}
	c.mon.IncMessagesReceived(event)
	if err := c.dispatch(event, p.Data); err != nil {
		logger.Log.Warnf("Bad %s payload: %v", event, err)
	}
}

func (c *Client) dispatch(event string, data []byte) error {
	switch event {
	case "game_state":
		gs, err := decode[models.GameState](data)
		if err != nil {
			return err
		}
		c.rec.ApplySnapshot(gs)
		c.checkJoined()

	case "update_players":
		players, err := decode[[]models.PlayerState](data)
		if err != nil {
			return err
		}
		c.rec.ApplyPlayers(players)
		c.checkJoined()

	case "update_game_state":
		d, err := decode[models.GameStateDelta](data)
		if err != nil {
			return err
		}
		c.rec.ApplyDelta(d)
		c.checkJoined()

	case "player_joined":
		p, err := decode[models.PlayerState](data)
		if err != nil {
			return err
		}
		c.rec.Joined(p)

	case "player_left":
		e, err := decode[models.PlayerLeft](data)
		if err != nil {
			return err
		}
		c.rec.Left(e)

	case "player_eliminated":
		e, err := decode[models.PlayerEliminated](data)
		if err != nil {
			return err
		}
		c.rec.Eliminated(e)
		if e.PlayerID == c.myID {
			_ = c.flow.Eliminated()
		}

	case "player_respawned":
		e, err := decode[models.PlayerRespawned](data)
		if err != nil {
			return err
		}
		c.rec.Respawned(e)

	case "player_name_changed":
		e, err := decode[models.PlayerNameChanged](data)
		if err != nil {
			return err
		}
		c.rec.NameChanged(e)

	case "infection_happened", "minion_infection":
		inf, err := decode[models.Infection](data)
		if err != nil {
			return err
		}
		c.rec.Infection(inf)

	case "join_failed":
		f, err := decode[models.Failure](data)
		if err != nil {
			return err
		}
		c.alert(f.Message)
		_ = c.flow.JoinFailed()

	case "name_change_failed":
		f, err := decode[models.Failure](data)
		if err != nil {
			return err
		}
		c.alert(f.Message)
		_ = c.flow.NameChangeFailed()

	case "special_item_spawned":
		e, err := decode[models.ItemSpawned](data)
		if err != nil {
			return err
		}
		if err := c.items.Spawned(e.Item, c.clock()); err != nil {
			return err
		}

	case "special_item_removed":
		e, err := decode[models.ItemRemoved](data)
		if err != nil {
			return err
		}
		c.items.Removed(e.ItemID)

	case "heartbeat":

	default:
		return fmt.Errorf("unexpected inbound event %s", event)
	}
	return nil
}

// checkJoined enters the game once the server lists the local player alive.
func (c *Client) checkJoined() {
	if !c.flow.Is(state.AwaitingJoinAck) {
		return
	}
	if me, ok := c.store.Players.Get(c.myID); ok && !me.IsDead {
		_ = c.flow.Joined()
	}
}
