// internal/game/sequencer.go
package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/models"
)

// defaultTimeLimit applies when a question row carries no time limit.
const defaultTimeLimit = 30

func effectiveTimeLimit(q models.Question) int {
	if q.TimeLimit <= 0 {
		return defaultTimeLimit
	}
	return q.TimeLimit
}

// sortedByOrder returns a copy of the questions sorted by their Order
// column. Order values are unique per pack but not necessarily
// contiguous, so traversal always sorts instead of doing arithmetic.
func sortedByOrder(questions []models.Question) []models.Question {
	sorted := make([]models.Question, len(questions))
	copy(sorted, questions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// FirstQuestion returns the question with the lowest order, or nil for
// an empty pack.
func FirstQuestion(questions []models.Question) *models.Question {
	sorted := sortedByOrder(questions)
	if len(sorted) == 0 {
		return nil
	}
	return &sorted[0]
}

// NextQuestion returns the question following currentID in traversal
// order, or nil when currentID was the last question. A currentID that
// is not in the pack at all also returns nil: a live game degrades to
// "finished" rather than crashing on inconsistent data.
func NextQuestion(questions []models.Question, currentID uuid.UUID) *models.Question {
	sorted := sortedByOrder(questions)
	for i := range sorted {
		if sorted[i].ID == currentID {
			if i+1 < len(sorted) {
				return &sorted[i+1]
			}
			return nil
		}
	}
	return nil
}

// questionNumber returns the 1-based position of id in traversal
// order, or 0 if absent.
func questionNumber(questions []models.Question, id uuid.UUID) int {
	sorted := sortedByOrder(questions)
	for i := range sorted {
		if sorted[i].ID == id {
			return i + 1
		}
	}
	return 0
}
