// internal/ws/client.go
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quizfire/quizfire/internal/game"
)

// Conn is the slice of *websocket.Conn the hub and its clients use.
// Narrowing it to an interface lets tests run the hub without a real
// network connection.
type Conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

// Client is one live websocket connection. A client belongs to at most
// one room; joining a room removes it from any prior room first.
type Client struct {
	ID string

	conn   Conn
	cancel context.CancelFunc

	// Room membership, guarded by the hub's mutex.
	sessionCode string
	deviceID    string
	isHost      bool
	lastPong    time.Time

	out chan game.Event
	log *logrus.Logger
}

func newClient(conn Conn, cancel context.CancelFunc, log *logrus.Logger) *Client {
	return &Client{
		ID:     "client_" + uuid.NewString(),
		conn:   conn,
		cancel: cancel,
		out:    make(chan game.Event, 16),
		log:    log,
	}
}

// Send pushes an event onto the client's outgoing queue without
// blocking. A full or closed queue drops the event with a warning;
// broadcast must never stall on one slow consumer.
func (c *Client) Send(ev game.Event) {
	select {
	case c.out <- ev:
	default:
		c.log.Warnf("ws: dropping %s for client %s, outgoing queue full or closed", ev.Type, c.ID)
	}
}

// SendError delivers an error event to this client only.
func (c *Client) SendError(sessionCode, message, code string) {
	c.Send(game.NewEvent(game.EventError, sessionCode, game.ErrorData{Message: message, Code: code}))
}

// WritePump drains the outgoing queue onto the websocket until the
// context is done or a write fails. Runs in its own goroutine per
// connection.
func (c *Client) WritePump(ctx context.Context) {
	defer func() {
		if c.conn != nil {
			_ = c.conn.Close(websocket.StatusGoingAway, "write pump stopping")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.log.Warnf("ws: failed to marshal %s for client %s: %v", ev.Type, c.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warnf("ws: write to client %s failed: %v", c.ID, err)
				return
			}
		}
	}
}
