package network

import "encoding/json"

// Inbound lobby events.
const (
	EventRoomFetch     = "room:fetch"
	EventRoomCreate    = "room:create"
	EventRoomJoin      = "room:join"
	EventRoomTalk      = "room:talk"
	EventRoomLeave     = "room:leave"
	EventRoomAddPlayer = "room:player:add"
	EventRoomReady     = "room:ready"
	EventRoomColor     = "room:color"
)

// Outbound broadcasts.
const (
	EventRoomNew         = "room:new"
	EventRoomClose       = "room:close"
	EventRoomJoined      = "room:join"
	EventRoomLeft        = "room:leave"
	EventRoomTalked      = "room:talk"
	EventRoomPlayerColor = "room:player:color"
	EventRoomPlayerReady = "room:player:ready"
	EventRoomGameStart   = "room:game:start"
	EventRoomGameEnd     = "room:game:end"
)

// Match-scoped events, delivered only to connections handed to the match
// subsystem.
const (
	EventGameWarmup     = "game:warmup"
	EventGameBonusNew   = "game:bonus:new"
	EventGameBonusClear = "game:bonus:clear"
	EventGameBonusTake  = "game:bonus:take"
	EventGameScore      = "game:score"
)

// EventCallback names the reply frame for an inbound event that carried
// a callback id.
const EventCallback = "callback"

// Event 是协议帧: 事件名 + 可选回调ID + JSON负载
type Event struct {
	Name string          `json:"name"`
	ID   uint32          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds a broadcast event with a marshalled payload.
func NewEvent(name string, payload interface{}) *Event {
	data, _ := json.Marshal(payload)
	return &Event{Name: name, Data: data}
}

// Callback builds the reply to an event that requested one. The id is
// echoed so the client can resolve the pending call.
func Callback(id uint32, result interface{}) *Event {
	data, _ := json.Marshal(result)
	return &Event{Name: EventCallback, ID: id, Data: data}
}
