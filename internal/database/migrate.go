// internal/database/migrate.go
package database

import (
	"context"
	"fmt"
)

// schema is applied idempotently by Migrate. The unique index on
// answers (player_id, question_id) is what gives the answer ledger its
// at-most-once guarantee; the unique index on sessions.code backs the
// collision-retry loop in session creation.
const schema = `
CREATE TABLE IF NOT EXISTS question_packs (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT 'easy',
	category TEXT NOT NULL DEFAULT '',
	question_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS questions (
	id UUID PRIMARY KEY,
	pack_id UUID NOT NULL REFERENCES question_packs(id),
	question TEXT NOT NULL,
	options TEXT[] NOT NULL,
	correct_answer_index INTEGER NOT NULL,
	time_limit INTEGER NOT NULL DEFAULT 30,
	points INTEGER NOT NULL DEFAULT 100,
	"order" INTEGER NOT NULL,
	CONSTRAINT questions_pack_order_key UNIQUE (pack_id, "order")
);

CREATE TABLE IF NOT EXISTS sessions (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL,
	host_device_id TEXT NOT NULL,
	question_pack_id UUID NOT NULL REFERENCES question_packs(id),
	status TEXT NOT NULL DEFAULT 'waiting',
	current_question_id UUID REFERENCES questions(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT sessions_code_key UNIQUE (code)
);

CREATE TABLE IF NOT EXISTS players (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES sessions(id),
	device_id TEXT NOT NULL,
	nickname TEXT NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT players_session_device_key UNIQUE (session_id, device_id)
);

CREATE TABLE IF NOT EXISTS answers (
	id UUID PRIMARY KEY,
	player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	question_id UUID NOT NULL REFERENCES questions(id),
	selected_option_index INTEGER NOT NULL,
	is_correct BOOLEAN NOT NULL,
	points_earned INTEGER NOT NULL DEFAULT 0,
	answered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT answers_player_question_key UNIQUE (player_id, question_id)
);

CREATE TABLE IF NOT EXISTS session_events (
	id BIGSERIAL PRIMARY KEY,
	session_code TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS session_events_code_idx ON session_events (session_code, occurred_at);
`

// Migrate creates the schema if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
