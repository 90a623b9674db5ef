// internal/database/packs.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizfire/quizfire/internal/models"
)

// ListPacks returns every question pack, newest first.
func (s *Store) ListPacks(ctx context.Context) ([]models.QuestionPack, error) {
	q := `SELECT id, name, description, difficulty, category, question_count, created_at
	      FROM question_packs ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	defer rows.Close()

	var packs []models.QuestionPack
	for rows.Next() {
		var p models.QuestionPack
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Difficulty, &p.Category, &p.QuestionCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// GetPack fetches a single pack.
func (s *Store) GetPack(ctx context.Context, id uuid.UUID) (*models.QuestionPack, error) {
	q := `SELECT id, name, description, difficulty, category, question_count, created_at
	      FROM question_packs WHERE id = $1`
	var p models.QuestionPack
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.Difficulty, &p.Category, &p.QuestionCount, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "question pack %s not found", id)
	}
	return &p, nil
}

// ListPackQuestions returns a pack's questions in traversal order.
func (s *Store) ListPackQuestions(ctx context.Context, packID uuid.UUID) ([]models.Question, error) {
	q := `SELECT id, pack_id, question, options, correct_answer_index, time_limit, points, "order"
	      FROM questions WHERE pack_id = $1 ORDER BY "order" ASC`
	rows, err := s.pool.Query(ctx, q, packID)
	if err != nil {
		return nil, fmt.Errorf("list pack questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		if err := rows.Scan(
			&question.ID, &question.PackID, &question.Text, &question.Options,
			&question.CorrectAnswerIndex, &question.TimeLimit, &question.Points, &question.Order,
		); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// GetQuestion fetches a single question.
func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q := `SELECT id, pack_id, question, options, correct_answer_index, time_limit, points, "order"
	      FROM questions WHERE id = $1`
	var question models.Question
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&question.ID, &question.PackID, &question.Text, &question.Options,
		&question.CorrectAnswerIndex, &question.TimeLimit, &question.Points, &question.Order,
	)
	if err != nil {
		return nil, notFound(err, "question %s not found", id)
	}
	return &question, nil
}
