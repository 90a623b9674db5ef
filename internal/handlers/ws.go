// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/ws"
)

// clientMessage is the only inbound websocket frame shape. Game
// actions stay on the HTTP API; the socket is a delivery channel.
type clientMessage struct {
	Type        string `json:"type"`
	SessionCode string `json:"sessionCode"`
	DeviceID    string `json:"deviceId"`
	IsHost      bool   `json:"isHost"`
}

// handleWS upgrades the connection, registers it with the hub, and
// runs the read loop until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Log.Warnf("websocket accept error: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	client := s.Hub.Register(c, cancel)
	s.Log.WithField("clientId", client.ID).Infof("websocket connected from %s", r.RemoteAddr)

	go client.WritePump(ctx)

	s.readLoop(ctx, c, client)

	s.Hub.Disconnect(client)
	cancel()
	s.Log.WithField("clientId", client.ID).Info("websocket disconnected")
}

func (s *Server) readLoop(ctx context.Context, c *websocket.Conn, client *ws.Client) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.SendError("", "invalid message", string(game.KindValidation))
			continue
		}

		switch msg.Type {
		case "join_room":
			code := game.NormalizeCode(msg.SessionCode)
			session, err := s.Store.GetSessionByCode(ctx, code)
			if err != nil {
				client.SendError(code, "session not found", string(game.KindNotFound))
				continue
			}
			isHost := msg.IsHost && msg.DeviceID == session.HostDeviceID
			s.Hub.JoinRoom(client, session.Code, msg.DeviceID, isHost)
		case "leave_room":
			s.Hub.LeaveRoom(client)
		case "ping":
			// Application-level keepalive; protocol pings come from the hub.
		default:
			client.SendError(msg.SessionCode, "unknown message type", string(game.KindValidation))
		}
	}
}
