// internal/database/answers.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/models"
)

// CreateAnswer inserts the answer and bumps the player's score in one
// transaction. The unique (player_id, question_id) index makes the
// insert the linearization point for duplicate submissions: the loser
// of a race gets KindAlreadyAnswered and no score change.
func (s *Store) CreateAnswer(ctx context.Context, a *models.Answer) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		insert := `INSERT INTO answers (id, player_id, question_id, selected_option_index, is_correct, points_earned, answered_at)
		           VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, insert,
			a.ID, a.PlayerID, a.QuestionID, a.SelectedOptionIndex,
			a.IsCorrect, a.PointsEarned, a.AnsweredAt,
		); err != nil {
			return err
		}
		if a.PointsEarned > 0 {
			bump := `UPDATE players SET score = score + $1 WHERE id = $2`
			if _, err := tx.Exec(ctx, bump, a.PointsEarned, a.PlayerID); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err, "answers_player_question_key") {
		return game.NewError(game.KindAlreadyAnswered, "player already answered this question")
	}
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

// ListAnswers returns every answer the session's players gave to one
// question.
func (s *Store) ListAnswers(ctx context.Context, sessionID, questionID uuid.UUID) ([]models.Answer, error) {
	q := `SELECT a.id, a.player_id, a.question_id, a.selected_option_index, a.is_correct, a.points_earned, a.answered_at
	      FROM answers a
	      JOIN players p ON p.id = a.player_id
	      WHERE p.session_id = $1 AND a.question_id = $2
	      ORDER BY a.answered_at ASC`
	rows, err := s.pool.Query(ctx, q, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.QuestionID, &a.SelectedOptionIndex, &a.IsCorrect, &a.PointsEarned, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// CountAnswers returns how many answers exist for a question.
func (s *Store) CountAnswers(ctx context.Context, questionID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM answers WHERE question_id = $1`, questionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return count, nil
}
