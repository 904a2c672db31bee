// room/room.go
package room

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/washer/curvytron/models"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/session"
)

// MaxNameLength caps room names, in runes.
const MaxNameLength = 25

// MinReadyPlayers is the minimum viable player count for a match. A room
// with a single player never becomes ready.
const MinReadyPlayers = 2

var (
	ErrInvalidName = errors.New("invalid room name")
	ErrNameTaken   = errors.New("room name already taken")
)

// Room 是一个大厅会话: 成员连接、玩家、进行中的对局
type Room struct {
	Name      string
	CreatedAt time.Time

	clients      map[string]*session.Session // sessionID -> session
	players      map[string]*Player          // name -> player (case-sensitive)
	playersByID  map[int]*Player
	nextPlayerID int
	game         Game
	closed       bool

	broadcaster   Broadcaster
	onPlayerLeave PlayerLeaveFunc
	mutex         sync.RWMutex
}

func newRoom(name string, broadcaster Broadcaster, onPlayerLeave PlayerLeaveFunc) *Room {
	return &Room{
		Name:          name,
		CreatedAt:     time.Now(),
		clients:       make(map[string]*session.Session),
		players:       make(map[string]*Player),
		playersByID:   make(map[int]*Player),
		nextPlayerID:  1,
		broadcaster:   broadcaster,
		onPlayerLeave: onPlayerLeave,
	}
}

// AddClient adds a session as a room member. It fails once the room has
// been closed by the registry, which is what makes the empty-room removal
// atomic with respect to concurrent joins.
func (r *Room) AddClient(s *session.Session) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return false
	}
	r.clients[s.ID] = s
	s.SetRoom(r.Name)
	return true
}

// RemoveClient removes a session and every player it owns. If a match is
// active the caller must detach the session from the match subsystem
// first; that ordering is a contract, not enforced here.
func (r *Room) RemoveClient(s *session.Session) {
	r.mutex.Lock()

	if _, exists := r.clients[s.ID]; !exists {
		r.mutex.Unlock()
		return
	}
	delete(r.clients, s.ID)

	var removed []*Player
	for name, player := range r.players {
		if player.SessionID == s.ID {
			delete(r.players, name)
			delete(r.playersByID, player.ID)
			removed = append(removed, player)
		}
	}
	s.ClearRoom()
	r.mutex.Unlock()

	// Fire lifecycle signals outside the lock: the subscriber broadcasts.
	if r.onPlayerLeave != nil {
		for _, player := range removed {
			r.onPlayerLeave(r, player)
		}
	}
}

// AddPlayer creates a player owned by the given session. The session must
// be a member and the name must be unused in this room (case-sensitive).
func (r *Room) AddPlayer(s *session.Session, name string) (*Player, bool) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxPlayerNameLength {
		return nil, false
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, member := r.clients[s.ID]; !member {
		return nil, false
	}
	if _, taken := r.players[name]; taken {
		return nil, false
	}

	player := &Player{
		SessionID: s.ID,
		ID:        r.nextPlayerID,
		Name:      name,
		Color:     DefaultColors[(r.nextPlayerID-1)%len(DefaultColors)],
	}
	r.nextPlayerID++
	r.players[name] = player
	r.playersByID[player.ID] = player
	s.AddPlayer(player.ID)
	return player, true
}

// IsNameAvailable 检查玩家名是否可用 (区分大小写)
func (r *Room) IsNameAvailable(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, taken := r.players[name]
	return !taken
}

// PlayerName resolves a player id owned by the given session.
func (r *Room) PlayerName(sessionID string, playerID int) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	player, exists := r.playersByID[playerID]
	if !exists || player.SessionID != sessionID {
		return "", false
	}
	return player.Name, true
}

// TogglePlayerReady flips the ready flag of a player owned by the session.
// Two toggles return the player to its original state.
func (r *Room) TogglePlayerReady(sessionID string, playerID int) (name string, ready bool, ok bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.playersByID[playerID]
	if !exists || player.SessionID != sessionID {
		return "", false, false
	}
	player.Ready = !player.Ready
	return player.Name, player.Ready, true
}

// SetPlayerColor validates and applies a color change. On failure the
// current color is returned unchanged so the caller can report it.
func (r *Room) SetPlayerColor(sessionID string, playerID int, color string) (name string, current string, ok bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.playersByID[playerID]
	if !exists || player.SessionID != sessionID {
		return "", "", false
	}
	if !ValidateColor(color) {
		return player.Name, player.Color, false
	}
	player.Color = color
	return player.Name, player.Color, true
}

// IsReady is true when the room holds at least MinReadyPlayers players and
// every one of them has its ready flag set.
func (r *Room) IsReady() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if len(r.players) < MinReadyPlayers {
		return false
	}
	for _, player := range r.players {
		if !player.Ready {
			return false
		}
	}
	return true
}

// SetGame transitions the room into "match active". It fails if a match
// is already running; the controller starts at most one per readiness
// trigger.
func (r *Room) SetGame(g Game) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.game != nil {
		return false
	}
	r.game = g
	return true
}

// CloseGame restores the room to its pre-match state.
func (r *Room) CloseGame() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.game = nil
	for _, player := range r.players {
		player.Ready = false
	}
}

// Game returns the active match handle, or nil.
func (r *Room) Game() Game {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.game
}

// Sessions returns a copy of the member sessions.
func (r *Room) Sessions() []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.clients))
	for _, s := range r.clients {
		sessions = append(sessions, s)
	}
	return sessions
}

// Players returns a snapshot of the room's players.
func (r *Room) Players() []models.PlayerSnapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	players := make([]models.PlayerSnapshot, 0, len(r.players))
	for _, player := range r.players {
		players = append(players, player.Serialize())
	}
	return players
}

func (r *Room) ClientCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.clients)
}

func (r *Room) PlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}

// Broadcast sends an event to all members of the room.
func (r *Room) Broadcast(event *network.Event) error {
	return r.broadcaster.BroadcastToRoom(r.Name, event)
}

// Serialize 返回房间快照 (名称、玩家、是否在对局中)
func (r *Room) Serialize() models.RoomSnapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	players := make([]models.PlayerSnapshot, 0, len(r.players))
	for _, player := range r.players {
		players = append(players, player.Serialize())
	}
	return models.RoomSnapshot{
		Name:    r.Name,
		Players: players,
		Game:    r.game != nil,
	}
}

// --- 房间注册表 ---

// Registry owns the set of active rooms, keyed by name.
type Registry struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create validates the name and registers a new empty room. Duplicate or
// invalid names are ordinary failures, not panics.
func (reg *Registry) Create(name string, broadcaster Broadcaster, onPlayerLeave PlayerLeaveFunc) (*Room, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if _, exists := reg.rooms[name]; exists {
		return nil, ErrNameTaken
	}
	r := newRoom(name, broadcaster, onPlayerLeave)
	reg.rooms[name] = r
	return r, nil
}

// Get 根据名称查找房间
func (reg *Registry) Get(name string) (*Room, bool) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	r, exists := reg.rooms[name]
	return r, exists
}

// Remove unregisters a room by identity. Idempotent no-op when the room is
// not (or no longer) registered.
func (reg *Registry) Remove(r *Room) bool {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if current, exists := reg.rooms[r.Name]; !exists || current != r {
		return false
	}
	r.mutex.Lock()
	r.closed = true
	r.mutex.Unlock()
	delete(reg.rooms, r.Name)
	return true
}

// RemoveIfEmpty unregisters the room only while its member set is empty.
// The closed flag is set under the room lock before the registry entry is
// dropped, so a join racing in observes the closure and fails instead of
// landing in an unregistered room.
func (reg *Registry) RemoveIfEmpty(r *Room) bool {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if current, exists := reg.rooms[r.Name]; !exists || current != r {
		return false
	}

	r.mutex.Lock()
	if len(r.clients) != 0 {
		r.mutex.Unlock()
		return false
	}
	r.closed = true
	r.mutex.Unlock()

	delete(reg.rooms, r.Name)
	return true
}

// Rooms returns the current rooms. Order is unspecified.
func (reg *Registry) Rooms() []*Room {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

func validateName(name string) error {
	if name == "" || len([]rune(name)) > MaxNameLength {
		return ErrInvalidName
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return ErrInvalidName
		}
	}
	return nil
}
