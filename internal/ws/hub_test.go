// internal/ws/hub_test.go
package ws

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizfire/quizfire/internal/game"
)

// fakeConn satisfies Conn without a network. Pings can be told to fail
// to simulate a dead peer.
type fakeConn struct {
	mu       sync.Mutex
	pings    int
	failPing bool
	closed   bool
}

func (f *fakeConn) Write(ctx context.Context, typ websocket.MessageType, p []byte) error {
	return nil
}

func (f *fakeConn) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	if f.failPing {
		return context.DeadlineExceeded
	}
	return nil
}

func (f *fakeConn) Close(code websocket.StatusCode, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestHub(clock clockwork.Clock) *Hub {
	return NewHub(clock, testLogger(), 30*time.Second, time.Minute)
}

// drain empties a client's outgoing queue and returns what was there.
func drain(c *Client) []game.Event {
	var out []game.Event
	for {
		select {
		case ev := <-c.out:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestRegisterSendsAck(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	client := h.Register(&fakeConn{}, func() {})

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, game.EventConnectionAck, events[0].Type)
	data := events[0].Data.(game.ConnectionAckData)
	assert.Equal(t, client.ID, data.ClientID)
}

func TestJoinRoomAndBroadcast(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	host := h.Register(&fakeConn{}, func() {})
	alice := h.Register(&fakeConn{}, func() {})
	bob := h.Register(&fakeConn{}, func() {})

	h.JoinRoom(host, "ABC234", "host-device", true)
	h.JoinRoom(alice, "ABC234", "device-a", false)
	h.JoinRoom(bob, "ABC234", "device-b", false)
	drain(host)
	drain(alice)
	drain(bob)

	count, hasHost := h.RoomInfo("ABC234")
	assert.Equal(t, 3, count)
	assert.True(t, hasHost)

	h.Broadcast("ABC234", game.ToAll, game.NewEvent(game.EventScoresUpdated, "ABC234", nil))
	assert.Len(t, drain(host), 1)
	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)

	h.Broadcast("ABC234", game.ToHost, game.NewEvent(game.EventQuestionRevealed, "ABC234", nil))
	assert.Len(t, drain(host), 1)
	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(bob))

	h.Broadcast("ABC234", game.ToPlayers, game.NewEvent(game.EventQuestionRevealed, "ABC234", nil))
	assert.Empty(t, drain(host))
	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)
}

func TestBroadcastToMissingRoomIsHarmless(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	h.Broadcast("NOROOM", game.ToAll, game.NewEvent(game.EventScoresUpdated, "NOROOM", nil))
}

func TestJoinRoomSwitchesRooms(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	client := h.Register(&fakeConn{}, func() {})

	h.JoinRoom(client, "AAAAAA", "device-a", false)
	h.JoinRoom(client, "BBBBBB", "device-a", false)

	count, _ := h.RoomInfo("AAAAAA")
	assert.Equal(t, 0, count, "old room cleaned up")
	count, _ = h.RoomInfo("BBBBBB")
	assert.Equal(t, 1, count)
}

func TestLeaveRoomCleansUpEmptyRoom(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	client := h.Register(&fakeConn{}, func() {})
	h.JoinRoom(client, "ABC234", "device-a", false)

	h.LeaveRoom(client)
	count, _ := h.RoomInfo("ABC234")
	assert.Equal(t, 0, count)

	// Leaving twice is a no-op.
	h.LeaveRoom(client)
}

func TestDisconnect(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	cancelled := false
	client := h.Register(&fakeConn{}, func() { cancelled = true })
	h.JoinRoom(client, "ABC234", "device-a", false)

	h.Disconnect(client)
	assert.True(t, cancelled)
	count, _ := h.RoomInfo("ABC234")
	assert.Equal(t, 0, count)

	// A second disconnect finds nothing to do.
	cancelled = false
	h.Disconnect(client)
	assert.False(t, cancelled)
}

func TestStaleClientsRemoved(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := newTestHub(clock)

	fresh := h.Register(&fakeConn{}, func() {})
	stale := h.Register(&fakeConn{}, func() {})
	h.JoinRoom(fresh, "ABC234", "device-a", false)
	h.JoinRoom(stale, "ABC234", "device-b", false)

	// Push the stale client past the liveness window, then refresh the
	// other one as a pong would.
	clock.Advance(2 * time.Minute)
	h.mu.Lock()
	fresh.lastPong = clock.Now()
	h.mu.Unlock()

	h.pingClients(context.Background())

	count, _ := h.RoomInfo("ABC234")
	assert.Equal(t, 1, count)
	h.mu.Lock()
	_, freshThere := h.clients[fresh.ID]
	_, staleThere := h.clients[stale.ID]
	h.mu.Unlock()
	assert.True(t, freshThere)
	assert.False(t, staleThere)
}

func TestShutdownDisconnectsEveryone(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	var cancels int
	for i := 0; i < 3; i++ {
		c := h.Register(&fakeConn{}, func() { cancels++ })
		h.JoinRoom(c, "ABC234", "device", false)
	}

	h.Shutdown()
	assert.Equal(t, 3, cancels)
	count, _ := h.RoomInfo("ABC234")
	assert.Equal(t, 0, count)
}

func TestSendDropsWhenQueueFull(t *testing.T) {
	h := newTestHub(clockwork.NewRealClock())
	client := h.Register(&fakeConn{}, func() {})
	drain(client)

	// Fill the buffered queue past capacity; Send must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(client.out)+10; i++ {
			client.Send(game.NewEvent(game.EventScoresUpdated, "ABC234", nil))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
	assert.Len(t, drain(client), cap(client.out))
}
