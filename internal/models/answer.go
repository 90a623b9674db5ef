// internal/models/answer.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TimedOutOption is the sentinel selected-option index stored for a
// player who never answered before the question timer fired.
const TimedOutOption = -1

// Answer records a player's response to one question. At most one row
// exists per (playerId, questionId); the answers table enforces this
// with a unique index, and rows are never mutated once written.
type Answer struct {
	ID                  uuid.UUID `json:"id"`
	PlayerID            uuid.UUID `json:"playerId"`
	QuestionID          uuid.UUID `json:"questionId"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	IsCorrect           bool      `json:"isCorrect"`
	PointsEarned        int       `json:"pointsEarned"`
	AnsweredAt          time.Time `json:"answeredAt"`
}
