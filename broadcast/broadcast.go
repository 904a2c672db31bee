// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"sync"

	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// Group tracks the connections currently subscribed to lobby-wide
// broadcasts.
type Group struct {
	sessions map[string]*session.Session
	mutex    sync.RWMutex
}

func NewGroup() *Group {
	return &Group{
		sessions: make(map[string]*session.Session),
	}
}

// Add subscribes a session. Returns false if it was already a member.
func (g *Group) Add(s *session.Session) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.sessions[s.ID]; exists {
		return false
	}
	g.sessions[s.ID] = s
	return true
}

// Remove unsubscribes a session. Returns false if it was not a member.
func (g *Group) Remove(s *session.Session) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.sessions[s.ID]; !exists {
		return false
	}
	delete(g.sessions, s.ID)
	return true
}

func (g *Group) Contains(s *session.Session) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, exists := g.sessions[s.ID]
	return exists
}

func (g *Group) Count() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.sessions)
}

// Broadcast sends an event to every subscribed session, fire-and-forget.
// Delivery errors are the transport layer's problem.
func (g *Group) Broadcast(event *network.Event) {
	g.mutex.RLock()
	sessions := make([]*session.Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mutex.RUnlock()

	for _, s := range sessions {
		if err := s.Send(event); err != nil {
			continue
		}
	}
}

// RoomBroadcaster delivers events to the members of a named room.
type RoomBroadcaster struct {
	registry *room.Registry
}

func NewRoomBroadcaster(registry *room.Registry) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry: registry,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomName string, event *network.Event) error {
	r, exists := b.registry.Get(roomName)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	for _, s := range r.Sessions() {
		if err := s.Send(event); err != nil {
			continue
		}
	}
	return nil
}
