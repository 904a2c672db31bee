package room

import "github.com/washer/curvytron/network"

// Broadcaster delivers an event to every member of a named room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomName string, event *network.Event) error
}

// Game is the handle the match subsystem returns when a room starts
// playing. Defined here so a Room can hold its active match without
// importing the game package.
type Game interface {
	ID() string
	Room() *Room
}

// PlayerLeaveFunc is the lifecycle signal fired after a departing session's
// players have been removed from a room.
type PlayerLeaveFunc func(room *Room, player *Player)
