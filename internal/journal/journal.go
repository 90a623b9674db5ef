// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizfire/quizfire/internal/game"
)

// DefaultQueueName is the Redis list the journal pushes events onto.
const DefaultQueueName = "quizfire_events"

// Journal mirrors every emitted game event onto a Redis list so an
// out-of-band drainer can persist them for replay and analytics.
// Recording is best-effort; the game never waits on it beyond a quick
// network send.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// Connect initializes a Redis client and verifies it with a ping.
func Connect(ctx context.Context, addr, password string, db int, queue string) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: queue}, nil
}

// New wraps an existing client; used by tests with miniredis.
func New(rdb *redis.Client, queue string) *Journal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Journal{rdb: rdb, queue: queue}
}

// Record implements game.Journal.
func (j *Journal) Record(ev game.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", j.queue, err)
	}
	return nil
}

// Close releases the Redis client.
func (j *Journal) Close() error {
	return j.rdb.Close()
}
