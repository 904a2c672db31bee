// game/game.go
package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/washer/curvytron/bonus"
	"github.com/washer/curvytron/broadcast"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/session"
	"github.com/washer/curvytron/state"
	"github.com/washer/curvytron/timer"
)

var (
	ErrBonusNotFound  = errors.New("bonus not found")
	ErrAvatarNotFound = errors.New("avatar not found")
)

// Field bounds for bonus placement.
const fieldSize = 100.0

// Game 一局对局: 房间玩家的化身、场上的奖励、生命周期状态机
type Game struct {
	id   string
	room *room.Room
	cfg  Config

	clients *broadcast.Group
	avatars map[int]*Avatar
	bonuses map[int]*bonus.Bonus

	nextBonusID int
	machine     *state.BaseMachine
	timers      *timer.Manager
	effectTasks []int64
	rng         *rand.Rand

	onEnd     func(*Game)
	ended     bool
	startedAt time.Time
	closeChan chan bool
	ticker    *time.Ticker
	mutex     sync.RWMutex
}

func newGame(id string, r *room.Room, cfg Config, timers *timer.Manager, onEnd func(*Game)) *Game {
	g := &Game{
		id:          id,
		room:        r,
		cfg:         cfg,
		clients:     broadcast.NewGroup(),
		avatars:     make(map[int]*Avatar),
		bonuses:     make(map[int]*bonus.Bonus),
		nextBonusID: 1,
		timers:      timers,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		onEnd:       onEnd,
		closeChan:   make(chan bool),
	}

	for _, p := range r.Players() {
		g.avatars[p.ID] = NewAvatar(p.ID, p.Name)
	}

	g.machine = state.NewBaseMachine(newWarmupState(g))
	return g
}

// --- room.Game 接口 ---

func (g *Game) ID() string {
	return g.id
}

func (g *Game) Room() *room.Room {
	return g.room
}

// --- 生命周期 ---

func (g *Game) start() {
	g.startedAt = time.Now()
	g.ticker = time.NewTicker(100 * time.Millisecond)
	go g.loop()
}

// StartedAt reports when the match began, for duration accounting.
func (g *Game) StartedAt() time.Time {
	return g.startedAt
}

// loop 驱动状态机更新
func (g *Game) loop() {
	for {
		select {
		case <-g.ticker.C:
			if current := g.machine.Current(); current != nil {
				current.OnUpdate()
			}
		case <-g.closeChan:
			g.ticker.Stop()
			return
		}
	}
}

// End finishes the match exactly once: the loop stops, pending effects
// are cleared and the completion callback fires. Guarded by a flag rather
// than sync.Once so re-entrant calls from inside the end callback return
// immediately instead of deadlocking.
func (g *Game) End() {
	g.mutex.Lock()
	if g.ended {
		g.mutex.Unlock()
		return
	}
	g.ended = true
	tasks := g.effectTasks
	g.effectTasks = nil
	bonuses := make([]*bonus.Bonus, 0, len(g.bonuses))
	for _, b := range g.bonuses {
		bonuses = append(bonuses, b)
	}
	g.bonuses = make(map[int]*bonus.Bonus)
	g.mutex.Unlock()

	close(g.closeChan)

	for _, id := range tasks {
		g.timers.Remove(id)
	}
	for _, b := range bonuses {
		b.Clear()
	}

	if g.onEnd != nil {
		g.onEnd(g)
	}
}

// --- 连接托管 ---

func (g *Game) attach(s *session.Session) {
	if g.clients.Add(s) {
		s.SetScope(session.ScopeGame)
	}
}

func (g *Game) detach(s *session.Session) {
	if g.clients.Remove(s) {
		s.SetScope(session.ScopeLobby)
	}
}

// Broadcast sends an event to every connection attached to the match.
func (g *Game) Broadcast(event *network.Event) {
	g.clients.Broadcast(event)
}

// --- 奖励 ---

// SpawnBonus places a new bonus on the field, respecting the configured
// cap. The assigned id and snapshot are broadcast to the match.
func (g *Game) SpawnBonus() *bonus.Bonus {
	g.mutex.Lock()

	if len(g.bonuses) >= g.cfg.MaxBonuses {
		g.mutex.Unlock()
		return nil
	}

	b := bonus.New(bonus.RandomKind(g.rng), bonus.Position{
		X: g.rng.Float64() * fieldSize,
		Y: g.rng.Float64() * fieldSize,
	})
	b.SetID(g.nextBonusID)
	g.bonuses[g.nextBonusID] = b
	g.nextBonusID++
	g.mutex.Unlock()

	g.Broadcast(network.NewEvent(network.EventGameBonusNew, b.Serialize()))
	return b
}

// TakeBonus removes a bonus from the field and applies its effect: to the
// picking avatar for self bonuses, to every other avatar otherwise. The
// effect reverts after the bonus duration. Returns the effect magnitude.
func (g *Game) TakeBonus(bonusID, playerID int) (float64, error) {
	g.mutex.Lock()
	b, exists := g.bonuses[bonusID]
	if !exists {
		g.mutex.Unlock()
		return 0, ErrBonusNotFound
	}
	avatar, exists := g.avatars[playerID]
	if !exists {
		g.mutex.Unlock()
		return 0, ErrAvatarNotFound
	}
	delete(g.bonuses, bonusID)

	targets := make([]*Avatar, 0, len(g.avatars))
	if b.Affect() == bonus.AffectSelf {
		targets = append(targets, avatar)
	} else {
		for id, other := range g.avatars {
			if id != playerID {
				targets = append(targets, other)
			}
		}
	}
	g.mutex.Unlock()

	var magnitude float64
	for _, target := range targets {
		// Per-bonus apply is once; fan-out to others reuses the per-kind
		// behavior on fresh instances.
		if len(targets) == 1 {
			magnitude = b.ApplyTo(target)
			g.scheduleClear(b)
			continue
		}
		spread := bonus.New(b.Kind(), b.Position())
		spread.SetID(b.ID())
		magnitude = spread.ApplyTo(target)
		g.scheduleClear(spread)
	}

	avatar.AddScore(1)
	g.Broadcast(network.NewEvent(network.EventGameBonusClear, b.Serialize()))
	return magnitude, nil
}

func (g *Game) scheduleClear(b *bonus.Bonus) {
	taskID := g.timers.Add(b.Duration(), 0, b.Clear)
	g.mutex.Lock()
	g.effectTasks = append(g.effectTasks, taskID)
	g.mutex.Unlock()
}

func (g *Game) Avatar(playerID int) (*Avatar, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	avatar, exists := g.avatars[playerID]
	return avatar, exists
}

func (g *Game) BonusCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.bonuses)
}

// Scores returns final scores by player name, for the match record.
func (g *Game) Scores() map[string]interface{} {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	scores := make(map[string]interface{}, len(g.avatars))
	for _, avatar := range g.avatars {
		scores[avatar.Name] = avatar.Score()
	}
	return scores
}
