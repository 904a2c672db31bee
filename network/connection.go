package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrMalformedEvent = errors.New("malformed event frame")

type Connection interface {
	Send(event *Event) error
	ReadEvent() (*Event, error)
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(event *Event) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) ReadEvent() (*Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, ErrMalformedEvent
	}
	if event.Name == "" {
		return nil, ErrMalformedEvent
	}
	return &event, nil
}

// SetHeartbeat arms the connection's liveness check: pings go out every
// interval and the read deadline is renewed by each pong, so a peer that
// stops answering is dropped after two missed intervals.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	})
	go c.pingLoop(interval)
}

// pingLoop exits when the first ping fails, which is what happens once the
// connection is closed.
func (c *WSConnection) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		deadline := time.Now().Add(interval)
		if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
	}
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
