// internal/game/store.go
package game

import (
	"context"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/models"
)

// Store is the durable session store the machine reads and writes.
// The postgres implementation lives in internal/database; tests use an
// in-memory one. Implementations translate their storage errors into
// game errors: missing rows become KindNotFound, a duplicate
// (player_id, question_id) insert becomes KindAlreadyAnswered, and a
// session code collision becomes ErrCodeTaken.
type Store interface {
	// Sessions.
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetSessionByCode(ctx context.Context, code string) (*models.Session, error)
	// UpdateSessionState writes status and currentQuestionId together so
	// a reader never observes a playing session without a question.
	UpdateSessionState(ctx context.Context, id uuid.UUID, status models.SessionStatus, currentQuestionID *uuid.UUID) error

	// Packs and questions (read-only after seeding).
	ListPacks(ctx context.Context) ([]models.QuestionPack, error)
	GetPack(ctx context.Context, id uuid.UUID) (*models.QuestionPack, error)
	ListPackQuestions(ctx context.Context, packID uuid.UUID) ([]models.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)

	// Players. ListPlayers returns rows ordered by joined_at ascending.
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetPlayerByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*models.Player, error)
	ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.Player, error)
	UpdatePlayerNickname(ctx context.Context, id uuid.UUID, nickname string) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error

	// Answers. CreateAnswer inserts the row and bumps the player's score
	// by PointsEarned in one transaction; the unique index on
	// (player_id, question_id) makes the existence check and insert
	// atomic under concurrent duplicate submissions.
	CreateAnswer(ctx context.Context, a *models.Answer) error
	ListAnswers(ctx context.Context, sessionID, questionID uuid.UUID) ([]models.Answer, error)
	CountAnswers(ctx context.Context, questionID uuid.UUID) (int, error)
}
