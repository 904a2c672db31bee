package room

import (
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/session"
)

// MockBroadcaster is a test double for the Broadcaster interface.
type MockBroadcaster struct{}

func (m *MockBroadcaster) BroadcastToRoom(roomName string, event *network.Event) error {
	return nil
}

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(event *network.Event) error    { return nil }
func (m *MockConnection) ReadEvent() (*network.Event, error) { return nil, nil }
func (m *MockConnection) Close() error                       { return nil }
func (m *MockConnection) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}

// newTestSession creates a dummy session for testing purposes.
func newTestSession(id string) *session.Session {
	return session.NewSession(id, &MockConnection{})
}

func newTestRoom(t *testing.T, reg *Registry, name string) *Room {
	t.Helper()
	r, err := reg.Create(name, &MockBroadcaster{}, nil)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	return r
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry()

	r := newTestRoom(t, reg, "alpha")
	if r.Name != "alpha" {
		t.Errorf("Expected room name alpha, got %s", r.Name)
	}

	retrieved, exists := reg.Get("alpha")
	if !exists {
		t.Fatal("Get should find the created room")
	}
	if retrieved != r {
		t.Error("Get should return the same room instance")
	}
}

func TestRegistry_CreateDuplicateFails(t *testing.T) {
	reg := NewRegistry()
	newTestRoom(t, reg, "alpha")

	_, err := reg.Create("alpha", &MockBroadcaster{}, nil)
	if err != ErrNameTaken {
		t.Errorf("Expected ErrNameTaken, got %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Registry must be unchanged after a duplicate create, count = %d", reg.Count())
	}
}

func TestRegistry_CreateInvalidName(t *testing.T) {
	reg := NewRegistry()

	cases := []string{"", "   ", "abcdefghijklmnopqrstuvwxyz", "bad\x00name"}
	for _, name := range cases {
		if _, err := reg.Create(name, &MockBroadcaster{}, nil); err != ErrInvalidName {
			t.Errorf("Create(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
	if reg.Count() != 0 {
		t.Errorf("Registry must stay empty, count = %d", reg.Count())
	}
}

func TestRegistry_CreateTrimsName(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "  alpha  ")
	if r.Name != "alpha" {
		t.Errorf("Expected trimmed name alpha, got %q", r.Name)
	}
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")

	if !r.AddClient(sess) {
		t.Fatal("AddClient should succeed on an open room")
	}
	if reg.RemoveIfEmpty(r) {
		t.Error("RemoveIfEmpty must refuse while the room has members")
	}

	r.RemoveClient(sess)
	if !reg.RemoveIfEmpty(r) {
		t.Error("RemoveIfEmpty should remove an empty room")
	}
	if _, exists := reg.Get("alpha"); exists {
		t.Error("Removed room must not be registered")
	}

	// A join racing against the removal observes the closure.
	late := newTestSession("s2")
	if r.AddClient(late) {
		t.Error("AddClient must fail on a closed room")
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")

	if !reg.Remove(r) {
		t.Fatal("Remove should succeed for a registered room")
	}
	if reg.Remove(r) {
		t.Error("Second Remove must be a no-op")
	}
}

func TestRoom_AddPlayer(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)

	player, ok := r.AddPlayer(sess, "Bob")
	if !ok {
		t.Fatal("AddPlayer should succeed for an available name")
	}
	if player.ID != 1 {
		t.Errorf("Expected first player id 1, got %d", player.ID)
	}
	if player.Color == "" || !ValidateColor(player.Color) {
		t.Errorf("New player must get a valid default color, got %q", player.Color)
	}
	if !sess.OwnsPlayer(player.ID) {
		t.Error("Session must own the player it created")
	}

	if _, ok := r.AddPlayer(sess, "Bob"); ok {
		t.Error("AddPlayer must reject a name already used in the room")
	}
}

func TestRoom_AddPlayerRequiresMembership(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	outsider := newTestSession("s1")

	if _, ok := r.AddPlayer(outsider, "Bob"); ok {
		t.Error("A non-member session must not create players")
	}
}

func TestRoom_NameMatchingIsCaseSensitive(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)

	if _, ok := r.AddPlayer(sess, "Bob"); !ok {
		t.Fatal("AddPlayer Bob failed")
	}
	if !r.IsNameAvailable("bob") {
		t.Error("Name matching is case-sensitive: bob must remain available")
	}
	if _, ok := r.AddPlayer(sess, "bob"); !ok {
		t.Error("AddPlayer bob should succeed alongside Bob")
	}
}

func TestRoom_IsReadyThreshold(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)

	solo, _ := r.AddPlayer(sess, "Solo")
	r.TogglePlayerReady(sess.ID, solo.ID)
	if r.IsReady() {
		t.Errorf("A room with fewer than %d players is never ready", MinReadyPlayers)
	}

	second, _ := r.AddPlayer(sess, "Second")
	if r.IsReady() {
		t.Error("Room must not be ready while a player is not ready")
	}

	r.TogglePlayerReady(sess.ID, second.ID)
	if !r.IsReady() {
		t.Error("Room with every player ready must be ready")
	}
}

func TestRoom_TogglePlayerReadyTwice(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)
	player, _ := r.AddPlayer(sess, "Bob")

	_, ready, ok := r.TogglePlayerReady(sess.ID, player.ID)
	if !ok || !ready {
		t.Fatalf("First toggle: ready=%v ok=%v", ready, ok)
	}
	_, ready, ok = r.TogglePlayerReady(sess.ID, player.ID)
	if !ok || ready {
		t.Errorf("Two toggles must return the player to the original state, got ready=%v", ready)
	}
}

func TestRoom_SetPlayerColor(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)
	player, _ := r.AddPlayer(sess, "Bob")
	original := player.Color

	_, current, ok := r.SetPlayerColor(sess.ID, player.ID, "not-a-color")
	if ok {
		t.Error("Invalid color must be rejected")
	}
	if current != original {
		t.Errorf("Failure must report the current color unchanged, got %q", current)
	}

	_, current, ok = r.SetPlayerColor(sess.ID, player.ID, "#00ff00")
	if !ok || current != "#00ff00" {
		t.Errorf("Valid color change failed: ok=%v color=%q", ok, current)
	}

	// A session can only recolor its own players.
	other := newTestSession("s2")
	r.AddClient(other)
	if _, _, ok := r.SetPlayerColor(other.ID, player.ID, "#0000ff"); ok {
		t.Error("A session must not recolor a player it does not own")
	}
}

func TestRoom_SetGameGuard(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	g := &fakeGame{room: r}

	if !r.SetGame(g) {
		t.Fatal("SetGame should succeed with no active match")
	}
	if r.SetGame(&fakeGame{room: r}) {
		t.Error("SetGame must fail while a match is active")
	}

	r.CloseGame()
	if r.Game() != nil {
		t.Error("CloseGame must clear the active match")
	}
}

func TestRoom_CloseGameResetsReady(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("s1")
	r.AddClient(sess)
	p1, _ := r.AddPlayer(sess, "Bob")
	p2, _ := r.AddPlayer(sess, "Ann")
	r.TogglePlayerReady(sess.ID, p1.ID)
	r.TogglePlayerReady(sess.ID, p2.ID)

	r.SetGame(&fakeGame{room: r})
	r.CloseGame()

	if r.IsReady() {
		t.Error("Players must not remain ready after the match closes")
	}
}

func TestRoom_RemoveClientDropsPlayers(t *testing.T) {
	reg := NewRegistry()
	var left []*Player
	r, err := reg.Create("alpha", &MockBroadcaster{}, func(room *Room, player *Player) {
		left = append(left, player)
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sess := newTestSession("s1")
	r.AddClient(sess)
	r.AddPlayer(sess, "Bob")
	r.AddPlayer(sess, "Ann")

	r.RemoveClient(sess)

	if r.PlayerCount() != 0 {
		t.Errorf("Players owned by a departed session must be removed, %d left", r.PlayerCount())
	}
	if len(left) != 2 {
		t.Errorf("Expected 2 player-leave signals, got %d", len(left))
	}
	if sess.Room() != "" || sess.PlayerCount() != 0 {
		t.Error("A session outside a room must hold no room or players")
	}
}

func TestRoom_SerializeLeaksNoInternals(t *testing.T) {
	reg := NewRegistry()
	r := newTestRoom(t, reg, "alpha")
	sess := newTestSession("secret-session-id")
	r.AddClient(sess)
	r.AddPlayer(sess, "Bob")

	data, err := json.Marshal(r.Serialize())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var snapshot map[string]interface{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for key := range snapshot {
		switch key {
		case "name", "players", "game":
		default:
			t.Errorf("Unexpected field %q in room snapshot", key)
		}
	}
	if strings.Contains(string(data), "secret-session-id") {
		t.Error("Session ids must never appear in a serialized room")
	}
}

func TestValidateColor(t *testing.T) {
	valid := []string{"#000000", "#ffffff", "#A1b2C3"}
	for _, c := range valid {
		if !ValidateColor(c) {
			t.Errorf("ValidateColor(%q) = false, want true", c)
		}
	}
	invalid := []string{"", "#fff", "123456", "#12345g", "#1234567"}
	for _, c := range invalid {
		if ValidateColor(c) {
			t.Errorf("ValidateColor(%q) = true, want false", c)
		}
	}
}

// fakeGame satisfies the Game interface for room tests.
type fakeGame struct {
	room *Room
}

func (g *fakeGame) ID() string  { return "fake" }
func (g *fakeGame) Room() *Room { return g.room }
