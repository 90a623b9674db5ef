// internal/models/question.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty labels a question pack. Matches the 'difficulty' pg enum.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionPack is an ordered, immutable collection of questions played
// in one session.
type QuestionPack struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`
	QuestionCount int        `json:"questionCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Question is a single multiple-choice question within a pack.
// Order values are unique per pack and define the traversal sequence;
// they are not necessarily contiguous, so sequencing sorts rather than
// incrementing.
type Question struct {
	ID                 uuid.UUID `json:"id"`
	PackID             uuid.UUID `json:"packId"`
	Text               string    `json:"question"`
	Options            []string  `json:"options"`
	CorrectAnswerIndex int       `json:"correctAnswerIndex"`
	TimeLimit          int       `json:"timeLimit"` // seconds; 30 when unset
	Points             int       `json:"points"`
	Order              int       `json:"order"`
}
