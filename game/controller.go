// game/controller.go
package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/washer/curvytron/logger"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/session"
	"github.com/washer/curvytron/timer"
)

var (
	ErrNoPlayers   = errors.New("room has no players")
	ErrGameRunning = errors.New("room already has a running game")
)

// Config 对局调参
type Config struct {
	Warmup        time.Duration
	Duration      time.Duration
	BonusInterval time.Duration
	MaxBonuses    int
}

// Controller is the match subsystem behind the handoff contract: it
// creates and ends games and owns the event streams of attached
// connections.
type Controller struct {
	cfg    Config
	timers *timer.Manager
	games  map[string]*Game // room name -> game
	mutex  sync.RWMutex
}

func NewController(cfg Config, timers *timer.Manager) *Controller {
	return &Controller{
		cfg:    cfg,
		timers: timers,
		games:  make(map[string]*Game),
	}
}

// Start creates a game for the room and begins its lifecycle. Either a
// fully wired game is returned or an error with no side effects, so the
// room can never observe a half-started match.
func (c *Controller) Start(r *room.Room, onEnd func(g room.Game)) (room.Game, error) {
	if r.PlayerCount() == 0 {
		return nil, ErrNoPlayers
	}

	c.mutex.Lock()
	if _, exists := c.games[r.Name]; exists {
		c.mutex.Unlock()
		return nil, ErrGameRunning
	}

	g := newGame(uuid.New().String(), r, c.cfg, c.timers, func(g *Game) {
		if onEnd != nil {
			onEnd(g)
		}
	})
	c.games[r.Name] = g
	c.mutex.Unlock()

	g.start()
	logger.Log.Infof("Match %s started for room %s", g.ID(), r.Name)
	return g, nil
}

// Stop releases a match handle. Safe to call for a game that already
// ended itself.
func (c *Controller) Stop(handle room.Game) {
	g, ok := handle.(*Game)
	if !ok || g == nil {
		return
	}

	c.mutex.Lock()
	if current, exists := c.games[g.room.Name]; exists && current == g {
		delete(c.games, g.room.Name)
	}
	c.mutex.Unlock()

	g.End()
}

// Attach hands a connection's event stream to the room's running match.
func (c *Controller) Attach(s *session.Session) {
	if g, exists := c.Get(s.Room()); exists {
		g.attach(s)
	}
}

// Detach returns a connection's event stream to the lobby.
func (c *Controller) Detach(s *session.Session) {
	if g, exists := c.Get(s.Room()); exists {
		g.detach(s)
		return
	}
	// The game may already be unregistered; the scope still must revert.
	s.SetScope(session.ScopeLobby)
}

func (c *Controller) Get(roomName string) (*Game, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	g, exists := c.games[roomName]
	return g, exists
}

func (c *Controller) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.games)
}

// HandleEvent processes inbound events from match-scoped connections. The
// simulation itself is client-authoritative here; the server arbitrates
// bonus pickups.
func (c *Controller) HandleEvent(s *session.Session, event *network.Event) {
	g, exists := c.Get(s.Room())
	if !exists {
		return
	}

	switch event.Name {
	case network.EventGameBonusTake:
		var req struct {
			Bonus  int `json:"bonus"`
			Player int `json:"player"`
		}
		if err := json.Unmarshal(event.Data, &req); err != nil {
			return
		}
		if !s.OwnsPlayer(req.Player) {
			return
		}
		if _, err := g.TakeBonus(req.Bonus, req.Player); err != nil {
			logger.Log.Debugf("Bonus pickup rejected in room %s: %v", s.Room(), err)
		}
	default:
		logger.Log.Debugf("Unknown game event %s from session %s", event.Name, s.GetID())
	}
}
