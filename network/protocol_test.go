package network

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventRoomClose, map[string]string{"room": "alpha"})
	if event.Name != EventRoomClose {
		t.Errorf("Name = %s", event.Name)
	}
	if event.ID != 0 {
		t.Error("Broadcast events carry no callback id")
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// id is omitted on the wire when no callback was requested.
	if strings.Contains(string(raw), `"id"`) {
		t.Errorf("Zero callback id must be omitted: %s", raw)
	}
}

func TestCallback(t *testing.T) {
	reply := Callback(42, map[string]bool{"success": true})
	if reply.Name != EventCallback {
		t.Errorf("Name = %s, want %s", reply.Name, EventCallback)
	}
	if reply.ID != 42 {
		t.Errorf("ID = %d, want 42", reply.ID)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(reply.Data, &result); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !result.Success {
		t.Error("Payload must survive the envelope")
	}
}

func TestEventDecode(t *testing.T) {
	var event Event
	frame := `{"name":"room:create","id":7,"data":{"name":"alpha"}}`
	if err := json.Unmarshal([]byte(frame), &event); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if event.Name != EventRoomCreate || event.ID != 7 {
		t.Errorf("Decoded event = %+v", event)
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("Payload decode failed: %v", err)
	}
	if payload.Name != "alpha" {
		t.Errorf("Payload name = %s", payload.Name)
	}
}
