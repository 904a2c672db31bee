package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event mirrors the server's protocol frame.
type Event struct {
	Name string          `json:"name"`
	ID   uint32          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

var nextCallbackID uint32 = 1

// send formats and sends an event, returning the callback id used.
func send(c *websocket.Conn, name string, payload interface{}, withCallback bool) (uint32, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	event := Event{Name: name, Data: data}
	if withCallback {
		event.ID = nextCallbackID
		nextCallbackID++
	}
	frame, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}
	return event.ID, c.WriteMessage(websocket.TextMessage, frame)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	roomName := flag.String("room", "testroom", "room to create and join")
	playerName := flag.String("player", "tester", "player name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	playerID := make(chan int, 1)

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var event Event
			if err := json.Unmarshal(message, &event); err != nil {
				log.Printf("Received invalid frame: %s", message)
				continue
			}
			log.Printf("<- RECV %s: %s", event.Name, string(event.Data))

			// Track our player id from the join broadcast.
			if event.Name == "room:join" {
				var notice struct {
					Player struct {
						ID   int    `json:"id"`
						Name string `json:"name"`
					} `json:"player"`
				}
				if json.Unmarshal(event.Data, &notice) == nil && notice.Player.Name == *playerName {
					select {
					case playerID <- notice.Player.ID:
					default:
					}
				}
			}
		}
	}()

	// Create a room, join it and register a player.
	log.Printf("Creating room %q...", *roomName)
	if _, err := send(c, "room:create", map[string]string{"name": *roomName}, true); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	if _, err := send(c, "room:join", map[string]string{"room": *roomName}, true); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	if _, err := send(c, "room:player:add", map[string]string{"name": *playerName}, true); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	var myPlayer int
	select {
	case myPlayer = <-playerID:
		log.Printf("Registered as player %d", myPlayer)
	case <-time.After(3 * time.Second):
		log.Println("No player id received yet; commands needing one may fail.")
	}

	log.Println("Commands: say <msg> | ready | color <#rrggbb> | leave | quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)

			switch {
			case text == "quit":
				return
			case text == "leave":
				send(c, "room:leave", nil, false)
			case text == "ready":
				send(c, "room:ready", map[string]int{"player": myPlayer}, true)
			case strings.HasPrefix(text, "say "):
				send(c, "room:talk", map[string]interface{}{
					"player":  myPlayer,
					"content": strings.TrimPrefix(text, "say "),
				}, true)
			case strings.HasPrefix(text, "color "):
				send(c, "room:color", map[string]interface{}{
					"player": myPlayer,
					"color":  strings.TrimPrefix(text, "color "),
				}, true)
			case text != "":
				log.Printf("Unknown command %q", text)
			}
		}
	}
}
