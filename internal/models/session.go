// internal/models/session.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a live game session.
// Transitions are monotonic: waiting -> playing -> finished.
type SessionStatus string

const (
	SessionWaiting  SessionStatus = "waiting"
	SessionPlaying  SessionStatus = "playing"
	SessionFinished SessionStatus = "finished"
)

// Session is one instance of a running game, identified by a short
// human-typeable code. CurrentQuestionID is nil until the host starts
// the game, then always points at the question currently being answered.
type Session struct {
	ID             uuid.UUID     `json:"id"`
	Code           string        `json:"code"`
	HostDeviceID   string        `json:"hostDeviceId"`
	QuestionPackID uuid.UUID     `json:"questionPackId"`
	Status         SessionStatus `json:"status"`
	CurrentQuestionID *uuid.UUID `json:"currentQuestionId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
