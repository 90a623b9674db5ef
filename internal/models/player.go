// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a device that joined a session. A (sessionId, deviceId)
// pair identifies at most one player; rejoining with the same device
// returns the existing row. Score only ever increases.
type Player struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	DeviceID  string    `json:"deviceId"`
	Nickname  string    `json:"nickname"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
}
