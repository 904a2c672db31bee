// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/washer/curvytron/network"
)

// Scope says which subsystem currently owns the session's event stream.
type Scope int32

const (
	ScopeLobby Scope = iota
	ScopeGame
)

type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	room       string
	players    map[int]struct{} // ids of players this session created in its room
	scope      Scope
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
		players:    make(map[int]struct{}),
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Send delivers an event and marks the session active. Sends come in
// concurrently from the read loop, broadcasts and timer callbacks, so the
// activity stamp takes the session mutex.
func (s *Session) Send(event *network.Event) error {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(event)
}

// LastActive reports when the session last sent an event.
func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Room returns the name of the room the session belongs to, or "".
func (s *Session) Room() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.room
}

func (s *Session) SetRoom(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.room = name
}

// ClearRoom detaches the session from its room and drops the players it
// owned there. A session outside a room never owns players.
func (s *Session) ClearRoom() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.room = ""
	s.players = make(map[int]struct{})
}

func (s *Session) AddPlayer(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.players[id] = struct{}{}
}

func (s *Session) OwnsPlayer(id int) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.players[id]
	return ok
}

func (s *Session) PlayerCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.players)
}

func (s *Session) Scope() Scope {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.scope
}

func (s *Session) SetScope(scope Scope) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.scope = scope
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
