// lobby/controller.go
package lobby

import (
	"encoding/json"
	"time"

	"github.com/washer/curvytron/broadcast"
	"github.com/washer/curvytron/logger"
	"github.com/washer/curvytron/models"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/session"
)

// RoomController binds inbound room:* events to registry and room
// operations, owns the lobby connection group and performs the handoff to
// and from the match subsystem.
type RoomController struct {
	registry    *room.Registry
	broadcaster room.Broadcaster
	games       GameController
	recorder    MatchRecorder // nil disables match recording
	group       *broadcast.Group
}

func NewRoomController(registry *room.Registry, broadcaster room.Broadcaster, games GameController, recorder MatchRecorder) *RoomController {
	return &RoomController{
		registry:    registry,
		broadcaster: broadcaster,
		games:       games,
		recorder:    recorder,
		group:       broadcast.NewGroup(),
	}
}

// Group exposes the lobby connection group, for metrics.
func (c *RoomController) Group() *broadcast.Group {
	return c.group
}

// Attach subscribes a connection to lobby-wide broadcasts.
func (c *RoomController) Attach(s *session.Session) {
	if c.group.Add(s) {
		s.SetScope(session.ScopeLobby)
	}
}

// Detach unsubscribes a connection from lobby-wide broadcasts.
func (c *RoomController) Detach(s *session.Session) {
	c.group.Remove(s)
}

// HandleEvent processes one inbound lobby event. Events of a single
// connection arrive sequentially from its read loop; shared room and
// registry state is guarded by their own locks.
func (c *RoomController) HandleEvent(s *session.Session, event *network.Event) {
	switch event.Name {
	case network.EventRoomFetch:
		c.emitAllRooms(s)
	case network.EventRoomCreate:
		c.onCreateRoom(s, event)
	case network.EventRoomJoin:
		c.onJoinRoom(s, event)
	case network.EventRoomTalk:
		c.onTalk(s, event)
	case network.EventRoomLeave:
		c.onLeaveRoom(s)
	case network.EventRoomAddPlayer:
		c.onAddPlayer(s, event)
	case network.EventRoomReady:
		c.onReadyRoom(s, event)
	case network.EventRoomColor:
		c.onColorRoom(s, event)
	default:
		logger.Log.Infof("Unknown lobby event %s from session %s", event.Name, s.GetID())
	}
}

// HandleDisconnect treats a dropped connection as an implicit leave.
func (c *RoomController) HandleDisconnect(s *session.Session) {
	c.onLeaveRoom(s)
	c.Detach(s)
}

// reply answers an event's callback, if one was requested.
func (c *RoomController) reply(s *session.Session, event *network.Event, result interface{}) {
	if event.ID == 0 {
		return
	}
	if err := s.Send(network.Callback(event.ID, result)); err != nil {
		logger.Log.Debugf("Callback delivery to session %s failed: %v", s.GetID(), err)
	}
}

// emitAllRooms pushes one room:new per registered room to a single
// connection so it can build its local lobby state.
func (c *RoomController) emitAllRooms(s *session.Session) {
	for _, r := range c.registry.Rooms() {
		if err := s.Send(network.NewEvent(network.EventRoomNew, r.Serialize())); err != nil {
			return
		}
	}
}

// currentRoom resolves the session's room, or nil.
func (c *RoomController) currentRoom(s *session.Session) *room.Room {
	name := s.Room()
	if name == "" {
		return nil
	}
	r, exists := c.registry.Get(name)
	if !exists {
		return nil
	}
	return r
}

func (c *RoomController) onCreateRoom(s *session.Session, event *network.Event) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil {
		c.reply(s, event, models.CreateResult{Success: false})
		return
	}

	r, err := c.registry.Create(req.Name, c.broadcaster, c.onPlayerLeave)
	if err != nil {
		c.reply(s, event, models.CreateResult{Success: false})
		return
	}

	c.reply(s, event, models.CreateResult{Success: true, Room: r.Name})
	c.group.Broadcast(network.NewEvent(network.EventRoomNew, r.Serialize()))
}

func (c *RoomController) onJoinRoom(s *session.Session, event *network.Event) {
	var req struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil || s.Room() != "" {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	r, exists := c.registry.Get(req.Room)
	if !exists || !r.AddClient(s) {
		// Not found, or closed by a racing empty-room removal.
		c.reply(s, event, models.Result{Success: false})
		return
	}

	c.reply(s, event, models.Result{Success: true})

	if r.Game() != nil {
		// A match is already in progress: hand the connection straight
		// over and tell it so.
		c.Detach(s)
		c.games.Attach(s)
		if err := s.Send(network.NewEvent(network.EventRoomGameStart, models.RoomRef{Room: r.Name})); err != nil {
			logger.Log.Debugf("Game start notice to session %s failed: %v", s.GetID(), err)
		}
	}
}

func (c *RoomController) onLeaveRoom(s *session.Session) {
	r := c.currentRoom(s)
	if r == nil {
		return
	}

	// Ordering contract: detach from the match subsystem before the room
	// membership changes.
	if r.Game() != nil {
		c.games.Detach(s)
		c.Attach(s)
	}

	r.RemoveClient(s)
	c.checkRoomClose(r)
}

// onPlayerLeave is the room lifecycle signal for departed players.
func (c *RoomController) onPlayerLeave(r *room.Room, player *room.Player) {
	c.group.Broadcast(network.NewEvent(network.EventRoomLeft, models.PlayerRef{
		Room:   r.Name,
		Player: player.Name,
	}))
}

// checkRoomClose removes the room once its membership is empty and tells
// the lobby. The registry refuses the removal if a join raced in.
func (c *RoomController) checkRoomClose(r *room.Room) {
	if !c.registry.RemoveIfEmpty(r) {
		return
	}

	// A match abandoned by all its members dies with the room.
	if g := r.Game(); g != nil {
		c.games.Stop(g)
		r.CloseGame()
	}

	c.group.Broadcast(network.NewEvent(network.EventRoomClose, models.RoomRef{Room: r.Name}))
}

func (c *RoomController) onAddPlayer(s *session.Session, event *network.Event) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	r := c.currentRoom(s)
	if r == nil {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	player, ok := r.AddPlayer(s, req.Name)
	if !ok {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	c.reply(s, event, models.Result{Success: true})
	c.group.Broadcast(network.NewEvent(network.EventRoomJoined, models.JoinNotice{
		Room:   r.Name,
		Player: player.Serialize(),
	}))
}

func (c *RoomController) onTalk(s *session.Session, event *network.Event) {
	var req struct {
		Player  int    `json:"player"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	r := c.currentRoom(s)
	if r == nil || req.Content == "" {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	name, found := r.PlayerName(s.ID, req.Player)
	if !found {
		c.reply(s, event, models.Result{Success: false})
		return
	}

	c.reply(s, event, models.Result{Success: true})
	if err := r.Broadcast(network.NewEvent(network.EventRoomTalked, models.Message{
		Room:    r.Name,
		Player:  name,
		Content: req.Content,
	})); err != nil {
		logger.Log.Debugf("Talk broadcast in room %s failed: %v", r.Name, err)
	}
}

func (c *RoomController) onColorRoom(s *session.Session, event *network.Event) {
	var req struct {
		Player int    `json:"player"`
		Color  string `json:"color"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil {
		c.reply(s, event, models.ColorResult{Success: false})
		return
	}

	r := c.currentRoom(s)
	if r == nil {
		c.reply(s, event, models.ColorResult{Success: false})
		return
	}

	name, current, ok := r.SetPlayerColor(s.ID, req.Player, req.Color)
	// Failure still reports the current color, unchanged.
	c.reply(s, event, models.ColorResult{Success: ok, Color: current})
	if !ok {
		return
	}

	if err := r.Broadcast(network.NewEvent(network.EventRoomPlayerColor, models.ColorNotice{
		Room:   r.Name,
		Player: name,
		Color:  current,
	})); err != nil {
		logger.Log.Debugf("Color broadcast in room %s failed: %v", r.Name, err)
	}
}

func (c *RoomController) onReadyRoom(s *session.Session, event *network.Event) {
	var req struct {
		Player int `json:"player"`
	}
	if err := json.Unmarshal(event.Data, &req); err != nil {
		c.reply(s, event, models.ReadyResult{Success: false})
		return
	}

	r := c.currentRoom(s)
	if r == nil {
		c.reply(s, event, models.ReadyResult{Success: false})
		return
	}

	name, ready, ok := r.TogglePlayerReady(s.ID, req.Player)
	if !ok {
		c.reply(s, event, models.ReadyResult{Success: false})
		return
	}

	if err := r.Broadcast(network.NewEvent(network.EventRoomPlayerReady, models.ReadyNotice{
		Room:   r.Name,
		Player: name,
		Ready:  ready,
	})); err != nil {
		logger.Log.Debugf("Ready broadcast in room %s failed: %v", r.Name, err)
	}

	if r.IsReady() {
		if err := c.startGame(r); err != nil {
			// Collaborator failure: the room stays in no-match state and
			// the readiness trigger is reported as failed.
			logger.Log.Errorf("Match start for room %s failed: %v", r.Name, err)
			c.reply(s, event, models.ReadyResult{Success: false, Ready: ready})
			return
		}
	}

	c.reply(s, event, models.ReadyResult{Success: true, Ready: ready})
}

// startGame performs the handoff for a ready room: at most one match per
// readiness trigger, announced to the whole lobby so other rooms see the
// activity.
func (c *RoomController) startGame(r *room.Room) error {
	if r.Game() != nil {
		// Already active; a second readiness trigger never starts a
		// second match.
		return nil
	}

	g, err := c.games.Start(r, c.endGame)
	if err != nil {
		return err
	}
	if !r.SetGame(g) {
		c.games.Stop(g)
		return nil
	}

	c.group.Broadcast(network.NewEvent(network.EventRoomGameStart, models.RoomRef{Room: r.Name}))

	// Delegate ownership of the room's connections to the match.
	for _, member := range r.Sessions() {
		c.Detach(member)
		c.games.Attach(member)
	}
	return nil
}

// endGame is the completion signal from the match subsystem. It can fire
// between any two lobby operations; every surviving connection ends up
// back in the lobby with a fresh view of the rooms.
func (c *RoomController) endGame(g room.Game) {
	r := g.Room()

	c.recordMatch(g)
	r.CloseGame()

	// Reclaim the room's connections first so the end notice and the room
	// replay reach them too.
	for _, member := range r.Sessions() {
		c.games.Detach(member)
		c.Attach(member)
	}

	c.group.Broadcast(network.NewEvent(network.EventRoomGameEnd, models.RoomRef{Room: r.Name}))

	for _, member := range r.Sessions() {
		c.emitAllRooms(member)
	}

	c.games.Stop(g)
}

func (c *RoomController) recordMatch(g room.Game) {
	if c.recorder == nil {
		return
	}

	scores := map[string]interface{}{}
	if sc, ok := g.(interface{ Scores() map[string]interface{} }); ok {
		scores = sc.Scores()
	}
	var duration time.Duration
	if st, ok := g.(interface{ StartedAt() time.Time }); ok {
		duration = time.Since(st.StartedAt())
	}

	if err := c.recorder.RecordMatch(g.Room().Name, scores, duration); err != nil {
		logger.Log.Errorf("Recording match for room %s failed: %v", g.Room().Name, err)
	}
}
