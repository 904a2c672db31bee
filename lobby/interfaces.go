package lobby

import (
	"time"

	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/session"
)

// GameController is the match handoff contract the lobby consumes: start a
// match for a room, release its handle, and move individual connections
// between the lobby's event stream and the match's.
type GameController interface {
	Start(r *room.Room, onEnd func(g room.Game)) (room.Game, error)
	Stop(g room.Game)
	Attach(s *session.Session)
	Detach(s *session.Session)
}

// MatchRecorder persists the outcome of a finished match. Recording is
// best effort; the lobby works without it.
type MatchRecorder interface {
	RecordMatch(roomName string, scores map[string]interface{}, duration time.Duration) error
}
