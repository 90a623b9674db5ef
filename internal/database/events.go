// internal/database/events.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SessionEvent is one journaled game event, as drained from the Redis
// queue into the session_events table.
type SessionEvent struct {
	SessionCode string
	EventType   string
	Payload     []byte // raw JSON envelope
	OccurredAt  time.Time
}

// InsertSessionEvents writes a batch of journaled events.
func (s *Store) InsertSessionEvents(ctx context.Context, events []SessionEvent) error {
	if len(events) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `INSERT INTO session_events (session_code, event_type, payload, occurred_at)
		      VALUES ($1, $2, $3, $4)`
		for _, ev := range events {
			if _, err := tx.Exec(ctx, q, ev.SessionCode, ev.EventType, ev.Payload, ev.OccurredAt); err != nil {
				return fmt.Errorf("insert session event: %w", err)
			}
		}
		return nil
	})
}
