// internal/database/db.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizfire/quizfire/internal/game"
)

// Store is the postgres-backed session store. It implements game.Store
// and is injected into the machine and handlers at startup.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against connStr and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// isUniqueViolation reports whether err is a violation of the named
// unique constraint (pg error 23505).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// notFound maps pgx.ErrNoRows onto the game error taxonomy.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return game.NewError(game.KindNotFound, format, args...)
	}
	return err
}
