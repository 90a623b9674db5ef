// internal/ws/hub.go
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/quizfire/quizfire/internal/game"
)

// Hub owns every live websocket connection and the room (session code
// -> connections) index. It is constructed once at startup, injected
// wherever events are emitted, and drained by Shutdown. No other code
// reaches into its maps.
type Hub struct {
	log   *logrus.Logger
	clock clockwork.Clock

	// pingInterval is the liveness probe cadence; a client that hasn't
	// ponged within staleAfter (roughly double the cadence) is removed.
	pingInterval time.Duration
	staleAfter   time.Duration

	mu      sync.Mutex
	clients map[string]*Client            // client ID -> client
	rooms   map[string]map[string]*Client // session code -> client ID -> client
}

// NewHub builds an empty hub. pingInterval and staleAfter fall back to
// 30s/60s when zero.
func NewHub(clock clockwork.Clock, log *logrus.Logger, pingInterval, staleAfter time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if staleAfter <= 0 {
		staleAfter = 2 * pingInterval
	}
	return &Hub{
		log:          log,
		clock:        clock,
		pingInterval: pingInterval,
		staleAfter:   staleAfter,
		clients:      make(map[string]*Client),
		rooms:        make(map[string]map[string]*Client),
	}
}

// Register admits a new connection and sends the handshake ack. The
// returned client is not in any room until it sends join_room.
func (h *Hub) Register(conn Conn, cancel context.CancelFunc) *Client {
	client := newClient(conn, cancel, h.log)
	client.lastPong = h.clock.Now()

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	client.Send(game.NewEvent(game.EventConnectionAck, "", game.ConnectionAckData{ClientID: client.ID}))
	h.log.Infof("ws: client %s connected", client.ID)
	return client
}

// JoinRoom moves the client into the session's room, leaving any prior
// room first, and acks with the room's connection count.
func (h *Hub) JoinRoom(client *Client, sessionCode, deviceID string, isHost bool) {
	h.mu.Lock()
	h.leaveRoomLocked(client)

	client.sessionCode = sessionCode
	client.deviceID = deviceID
	client.isHost = isHost

	room, ok := h.rooms[sessionCode]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[sessionCode] = room
	}
	room[client.ID] = client
	count := len(room)
	h.mu.Unlock()

	role := "player"
	if isHost {
		role = "host"
	}
	h.log.Infof("ws: client %s joined room %s as %s (%d connected)", client.ID, sessionCode, role, count)

	client.Send(game.NewEvent(game.EventConnectionAck, sessionCode, game.ConnectionAckData{
		ClientID:    client.ID,
		PlayerCount: count,
	}))
}

// LeaveRoom removes the client from its room, if any.
func (h *Hub) LeaveRoom(client *Client) {
	h.mu.Lock()
	h.leaveRoomLocked(client)
	h.mu.Unlock()
}

// leaveRoomLocked assumes h.mu is held. Empty rooms are deleted.
func (h *Hub) leaveRoomLocked(client *Client) {
	if client.sessionCode == "" {
		return
	}
	code := client.sessionCode
	client.sessionCode = ""
	room, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, code)
		h.log.Infof("ws: room %s is empty, cleaned up", code)
	} else {
		h.log.Debugf("ws: client %s left room %s, %d remaining", client.ID, code, len(room))
	}
}

// Disconnect tears a client down entirely: room membership, client
// index, outgoing queue and connection context.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	h.leaveRoomLocked(client)
	_, registered := h.clients[client.ID]
	delete(h.clients, client.ID)
	h.mu.Unlock()

	if !registered {
		return
	}
	if client.cancel != nil {
		client.cancel()
	}
	h.log.Infof("ws: client %s disconnected", client.ID)
}

// Broadcast implements game.Broadcaster: it delivers the event to
// every connection in the room that matches the recipient filter. A
// missing room is logged, not an error; game actions arrive over HTTP
// and must succeed with no live viewers.
func (h *Hub) Broadcast(sessionCode string, to game.Recipients, ev game.Event) {
	match := func(c *Client) bool {
		switch to {
		case game.ToHost:
			return c.isHost
		case game.ToPlayers:
			return !c.isHost
		default:
			return true
		}
	}

	h.mu.Lock()
	room, ok := h.rooms[sessionCode]
	if !ok {
		h.mu.Unlock()
		h.log.Warnf("ws: broadcast %s to non-existent room %s", ev.Type, sessionCode)
		return
	}
	targets := make([]*Client, 0, len(room))
	for _, c := range room {
		if match(c) {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.Send(ev)
	}
	h.log.Debugf("ws: broadcast %s to room %s (%d recipients)", ev.Type, sessionCode, len(targets))
}

// RoomInfo reports the connection count and host presence of a room.
func (h *Hub) RoomInfo(sessionCode string) (clientCount int, hasHost bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionCode]
	if !ok {
		return 0, false
	}
	for _, c := range room {
		if c.isHost {
			hasHost = true
		}
	}
	return len(room), hasHost
}

// Run drives the liveness loop until ctx is cancelled: each tick pings
// every client and force-removes the ones that have been silent past
// the stale window.
func (h *Hub) Run(ctx context.Context) error {
	ticker := h.clock.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			h.pingClients(ctx)
		}
	}
}

func (h *Hub) pingClients(ctx context.Context) {
	now := h.clock.Now()

	h.mu.Lock()
	var stale []*Client
	var live []*Client
	for _, c := range h.clients {
		if now.Sub(c.lastPong) > h.staleAfter {
			stale = append(stale, c)
		} else if c.conn != nil {
			live = append(live, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stale {
		h.log.Warnf("ws: removing stale client %s (no pong for %s)", c.ID, now.Sub(c.lastPong))
		h.Disconnect(c)
	}

	for _, c := range live {
		go func(c *Client) {
			pingCtx, cancel := context.WithTimeout(ctx, h.pingInterval)
			defer cancel()
			if err := c.conn.Ping(pingCtx); err != nil {
				h.log.Debugf("ws: ping to client %s failed: %v", c.ID, err)
				return
			}
			h.mu.Lock()
			c.lastPong = h.clock.Now()
			h.mu.Unlock()
		}(c)
	}
}

// Shutdown disconnects every client and clears all rooms.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Disconnect(c)
	}
	h.log.Info("ws: hub shut down")
}
