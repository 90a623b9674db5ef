// internal/database/seed.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizfire/quizfire/internal/models"
)

type seedQuestion struct {
	text    string
	options []string
	correct int
	points  int
}

type seedPack struct {
	name        string
	description string
	difficulty  models.Difficulty
	category    string
	questions   []seedQuestion
}

var seedPacks = []seedPack{
	{
		name:        "General Knowledge Warm-up",
		description: "Easy openers for any crowd.",
		difficulty:  models.DifficultyEasy,
		category:    "general",
		questions: []seedQuestion{
			{"What is the capital of France?", []string{"Berlin", "Paris", "Madrid", "Rome"}, 1, 100},
			{"How many continents are there?", []string{"Five", "Six", "Seven", "Eight"}, 2, 100},
			{"Which planet is known as the Red Planet?", []string{"Venus", "Jupiter", "Mars", "Saturn"}, 2, 100},
			{"What gas do plants absorb from the air?", []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Hydrogen"}, 1, 100},
		},
	},
	{
		name:        "Science & Nature",
		description: "From cells to galaxies.",
		difficulty:  models.DifficultyMedium,
		category:    "science",
		questions: []seedQuestion{
			{"What is the chemical symbol for gold?", []string{"Go", "Gd", "Au", "Ag"}, 2, 200},
			{"How many bones does an adult human have?", []string{"186", "206", "226", "246"}, 1, 200},
			{"What force keeps planets in orbit?", []string{"Magnetism", "Friction", "Gravity", "Inertia"}, 2, 200},
		},
	},
	{
		name:        "History Deep Cuts",
		description: "For the table that thinks it knows everything.",
		difficulty:  models.DifficultyHard,
		category:    "history",
		questions: []seedQuestion{
			{"In which year did the Byzantine Empire fall?", []string{"1204", "1453", "1492", "1517"}, 1, 300},
			{"Who was the first emperor of a unified China?", []string{"Han Wudi", "Qin Shi Huang", "Kublai Khan", "Sun Yat-sen"}, 1, 300},
			{"The Rosetta Stone is inscribed in how many scripts?", []string{"Two", "Three", "Four", "Five"}, 1, 300},
		},
	},
}

// Seed inserts the demo packs unless packs already exist. Safe to run
// repeatedly.
func (s *Store) Seed(ctx context.Context) error {
	var existing int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM question_packs`).Scan(&existing); err != nil {
		return fmt.Errorf("count packs: %w", err)
	}
	if existing > 0 {
		return nil
	}

	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, pack := range seedPacks {
			packID := uuid.New()
			insertPack := `INSERT INTO question_packs (id, name, description, difficulty, category, question_count)
			               VALUES ($1, $2, $3, $4, $5, $6)`
			if _, err := tx.Exec(ctx, insertPack,
				packID, pack.name, pack.description, pack.difficulty, pack.category, len(pack.questions),
			); err != nil {
				return fmt.Errorf("seed pack %q: %w", pack.name, err)
			}
			for i, q := range pack.questions {
				insertQuestion := `INSERT INTO questions (id, pack_id, question, options, correct_answer_index, time_limit, points, "order")
				                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
				if _, err := tx.Exec(ctx, insertQuestion,
					uuid.New(), packID, q.text, q.options, q.correct, 30, q.points, i+1,
				); err != nil {
					return fmt.Errorf("seed question %d of %q: %w", i+1, pack.name, err)
				}
			}
		}
		return nil
	})
}
