package client

import (
	"errors"
	"strings"

	"github.com/wfunc/fleetview/logger"
	"github.com/wfunc/fleetview/models"
	"github.com/wfunc/fleetview/state"
)

var ErrEmptyName = errors.New("please enter your name")

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdMove
	cmdRename
	cmdRespawn
	cmdSubmit
	cmdQuit
)

type command struct {
	kind   commandKind
	name   string
	dx, dy float64
}

// The methods below are safe to call from any goroutine. They queue the
// command for the Run loop.

func (c *Client) Join(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.commands <- command{kind: cmdJoin, name: name}
	return nil
}

// Move steers the fleet. Moves are dropped when the queue is full.
func (c *Client) Move(dx, dy float64) {
	select {
	case c.commands <- command{kind: cmdMove, dx: dx, dy: dy}:
	default:
		c.mon.IncMovesDropped()
	}
}

func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.commands <- command{kind: cmdRename, name: name}
	return nil
}

// Respawn answers the respawn prompt. An empty name keeps the current one.
func (c *Client) Respawn(name string) {
	c.commands <- command{kind: cmdRespawn, name: strings.TrimSpace(name)}
}

// Submit answers whatever name prompt the client is showing: a join at the
// menu, a respawn after elimination or a rename in game.
func (c *Client) Submit(name string) {
	c.commands <- command{kind: cmdSubmit, name: strings.TrimSpace(name)}
}

func (c *Client) Quit() {
	select {
	case c.commands <- command{kind: cmdQuit}:
	default:
	}
}

// handleCommand returns false on quit.
func (c *Client) handleCommand(cmd command) bool {
	switch cmd.kind {
	case cmdJoin:
		c.join(cmd.name)
	case cmdMove:
		c.move(cmd.dx, cmd.dy)
	case cmdRename:
		c.rename(cmd.name)
	case cmdRespawn:
		c.respawn(cmd.name)
	case cmdSubmit:
		c.submit(cmd.name)
	case cmdQuit:
		return false
	}
	return true
}

func (c *Client) join(name string) {
	if !c.flow.Is(state.AtMenu) {
		logger.Log.Warnf("Join ignored in state %s", c.flow.Current())
		return
	}
	c.sess.SetName(name)
	c.send("join_game", models.JoinGame{Name: name})
	_ = c.flow.JoinRequested()
}

func (c *Client) rename(name string) {
	if !c.flow.Is(state.InGame) {
		logger.Log.Warnf("Rename ignored in state %s", c.flow.Current())
		return
	}
	c.send("change_name", models.ChangeName{Name: name})
}

func (c *Client) submit(name string) {
	switch c.flow.Current() {
	case state.AtMenu:
		if name == "" {
			c.alert(ErrEmptyName.Error())
			return
		}
		c.join(name)
	case state.AwaitingRespawnName:
		c.respawn(name)
	case state.InGame:
		if name != "" {
			c.rename(name)
		}
	default:
		logger.Log.Warnf("Name ignored in state %s", c.flow.Current())
	}
}

func (c *Client) move(dx, dy float64) {
	if !c.flow.Is(state.InGame) {
		return
	}
	if !c.limiter.AllowN(c.clock(), 1) {
		c.mon.IncMovesDropped()
		return
	}
	c.send("move_player", models.MovePlayer{DX: dx, DY: dy})
}

// respawn renames first when the name changed, which clears the local
// mirror; the same name asks for a plain respawn.
func (c *Client) respawn(name string) {
	if !c.flow.Is(state.AwaitingRespawnName) {
		logger.Log.Warnf("Respawn ignored in state %s", c.flow.Current())
		return
	}
	current := c.sess.Name()
	if me, ok := c.store.Players.Get(c.myID); ok {
		current = me.Name
	}
	if name != "" && name != current {
		c.rec.Reset()
		c.sess.SetName(name)
		c.send("change_name", models.ChangeName{Name: name})
	} else {
		c.send("respawn_player", models.RespawnPlayer{})
	}
	_ = c.flow.RespawnSubmitted()
}
