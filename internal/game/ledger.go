// internal/game/ledger.go
package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/quizfire/quizfire/internal/models"
)

// Ledger records each player's answer to a question exactly once and
// keeps scores consistent with what was recorded. Atomicity of the
// exists-check-plus-insert rests on the store's unique
// (player_id, question_id) constraint, not on any in-process lock, so
// concurrent duplicate submissions cannot double-award points.
type Ledger struct {
	store Store
	clock clockwork.Clock
}

// NewLedger builds a ledger over the given store.
func NewLedger(store Store, clock clockwork.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// Submit scores and persists one answer. Returns KindAlreadyAnswered
// if the player has already answered this question.
func (l *Ledger) Submit(ctx context.Context, player *models.Player, question *models.Question, selectedOption int) (*models.Answer, error) {
	isCorrect := selectedOption == question.CorrectAnswerIndex
	points := 0
	if isCorrect {
		points = question.Points
	}

	answer := &models.Answer{
		ID:                  uuid.New(),
		PlayerID:            player.ID,
		QuestionID:          question.ID,
		SelectedOptionIndex: selectedOption,
		IsCorrect:           isCorrect,
		PointsEarned:        points,
		AnsweredAt:          l.clock.Now().UTC(),
	}
	if err := l.store.CreateAnswer(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// FillTimeouts inserts a synthetic zero-point answer for every player
// in the session who has not answered the question, and returns those
// players. Players who answered (including ones who slip an answer in
// between the listing and the insert) are skipped, which makes the
// call idempotent: running it twice creates nothing new.
func (l *Ledger) FillTimeouts(ctx context.Context, sessionID, questionID uuid.UUID) ([]models.Player, error) {
	players, err := l.store.ListPlayers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := l.store.ListAnswers(ctx, sessionID, questionID)
	if err != nil {
		return nil, err
	}

	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		answered[a.PlayerID] = true
	}

	var timedOut []models.Player
	for _, p := range players {
		if answered[p.ID] {
			continue
		}
		synthetic := &models.Answer{
			ID:                  uuid.New(),
			PlayerID:            p.ID,
			QuestionID:          questionID,
			SelectedOptionIndex: models.TimedOutOption,
			IsCorrect:           false,
			PointsEarned:        0,
			AnsweredAt:          l.clock.Now().UTC(),
		}
		err := l.store.CreateAnswer(ctx, synthetic)
		if errors.Is(err, ErrAlreadyAnswered) {
			// Lost the race to a real answer; the ledger insert is the
			// linearization point and the real answer wins.
			continue
		}
		if err != nil {
			return timedOut, err
		}
		timedOut = append(timedOut, p)
	}
	return timedOut, nil
}

// CountAnswered returns how many answers exist for the question,
// synthetic timeouts included.
func (l *Ledger) CountAnswered(ctx context.Context, questionID uuid.UUID) (int, error) {
	return l.store.CountAnswers(ctx, questionID)
}
