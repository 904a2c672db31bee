package models

// Wire snapshots carried by lobby broadcasts. Only public fields: room and
// player names, player id/color/ready. Session ids never leave the server.

// RoomSnapshot 房间快照
type RoomSnapshot struct {
	Name    string           `json:"name"`
	Players []PlayerSnapshot `json:"players"`
	Game    bool             `json:"game"`
}

// PlayerSnapshot 玩家快照
type PlayerSnapshot struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Ready bool   `json:"ready"`
}

// BonusSnapshot is what the match subsystem serializes when a bonus is
// placed on the field. Internal apply state is never exposed.
type BonusSnapshot struct {
	ID       int        `json:"id"`
	Type     string     `json:"type"`
	Radius   float64    `json:"radius"`
	Position [2]float64 `json:"position"`
	Affect   string     `json:"affect"`
}

// RoomRef names a room in a broadcast payload.
type RoomRef struct {
	Room string `json:"room"`
}

// PlayerRef names a player inside a room.
type PlayerRef struct {
	Room   string `json:"room"`
	Player string `json:"player"`
}

// JoinNotice announces a new player to the lobby.
type JoinNotice struct {
	Room   string         `json:"room"`
	Player PlayerSnapshot `json:"player"`
}

// Message 聊天消息
type Message struct {
	Room    string `json:"room"`
	Player  string `json:"player"`
	Content string `json:"content"`
}

// ColorNotice carries a player color change.
type ColorNotice struct {
	Room   string `json:"room"`
	Player string `json:"player"`
	Color  string `json:"color"`
}

// ReadyNotice carries a player ready change.
type ReadyNotice struct {
	Room   string `json:"room"`
	Player string `json:"player"`
	Ready  bool   `json:"ready"`
}

// Callback results.

type Result struct {
	Success bool `json:"success"`
}

type CreateResult struct {
	Success bool   `json:"success"`
	Room    string `json:"room,omitempty"`
}

type ReadyResult struct {
	Success bool `json:"success"`
	Ready   bool `json:"ready"`
}

// ColorResult reports the player's current color even on failure, so
// callers must not treat a false success as "no color".
type ColorResult struct {
	Success bool   `json:"success"`
	Color   string `json:"color"`
}
