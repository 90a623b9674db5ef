// internal/database/sessions.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/models"
)

// CreateSession inserts a waiting session. A code collision surfaces
// as game.ErrCodeTaken so the caller can retry with a fresh code.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	q := `INSERT INTO sessions (id, code, host_device_id, question_pack_id, status, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, q,
		session.ID, session.Code, session.HostDeviceID, session.QuestionPackID,
		session.Status, session.CreatedAt, session.UpdatedAt,
	)
	if isUniqueViolation(err, "sessions_code_key") {
		return game.ErrCodeTaken
	}
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

const sessionColumns = `id, code, host_device_id, question_pack_id, status, current_question_id, created_at, updated_at`

func (s *Store) scanSession(row interface {
	Scan(dest ...interface{}) error
}) (*models.Session, error) {
	var sess models.Session
	err := row.Scan(
		&sess.ID, &sess.Code, &sess.HostDeviceID, &sess.QuestionPackID,
		&sess.Status, &sess.CurrentQuestionID, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSession fetches a session by id.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	sess, err := s.scanSession(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "session %s not found", id)
	}
	return sess, nil
}

// GetSessionByCode fetches a session by its (already normalized) code.
func (s *Store) GetSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE code = $1`
	sess, err := s.scanSession(s.pool.QueryRow(ctx, q, code))
	if err != nil {
		return nil, notFound(err, "session %s not found", code)
	}
	return sess, nil
}

// UpdateSessionState writes status and current question together.
func (s *Store) UpdateSessionState(ctx context.Context, id uuid.UUID, status models.SessionStatus, currentQuestionID *uuid.UUID) error {
	q := `UPDATE sessions SET status = $1, current_question_id = $2, updated_at = now() WHERE id = $3`
	tag, err := s.pool.Exec(ctx, q, status, currentQuestionID, id)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.NewError(game.KindNotFound, "session %s not found", id)
	}
	return nil
}
