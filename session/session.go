// session/session.go
package session

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/fleetview/network"
)

// HeaderSessionID carries the connection id in the handshake. The server
// uses it as the local player's id.
const HeaderSessionID = "X-Session-ID"

const (
	StatusConnected    = "Connected!"
	StatusDisconnected = "Disconnected from server"
)

func NewID() string {
	return uuid.NewString()
}

// Header builds the handshake header for id.
func Header(id string) http.Header {
	h := http.Header{}
	h.Set(HeaderSessionID, id)
	return h
}

// FailureStatus turns a connect error into the line shown to the player.
func FailureStatus(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "CORS"):
		return "CORS error: Server not configured properly for cross-origin requests"
	case strings.Contains(msg, "404"):
		return "Server not found: Check if the server is running and accessible"
	case strings.Contains(strings.ToLower(msg), "timeout"):
		return "Connection timeout: Server may be overloaded or unreachable"
	}
	return "Connection failed: " + msg
}

type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time
	name       string
	status     string
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Send JSON encodes payload and sends it as event.
func (s *Session) Send(event string, payload any) error {
	msgID, data, err := network.Marshal(event, payload)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	if err := s.Conn.Send(msgID, data); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

// Name is the last name the player asked for.
func (s *Session) Name() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.name
}

func (s *Session) SetName(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.name = name
}

func (s *Session) Status() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.status
}

func (s *Session) SetStatus(status string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = status
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}
