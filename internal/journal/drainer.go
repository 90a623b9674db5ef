// internal/journal/drainer.go
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quizfire/quizfire/internal/database"
	"github.com/quizfire/quizfire/internal/game"
)

// EventSink is where drained events land; in production the postgres
// store's session_events table.
type EventSink interface {
	InsertSessionEvents(ctx context.Context, events []database.SessionEvent) error
}

// Drainer pops journaled events off the Redis list, accumulates them
// in a batch and flushes the batch to the sink when it fills or the
// flush interval elapses.
type Drainer struct {
	rdb        *redis.Client
	sink       EventSink
	log        *logrus.Logger
	queue      string
	batchSize  int
	flushDelay time.Duration

	batchMu sync.Mutex
	batch   []database.SessionEvent
}

// NewDrainer builds a drainer. batchSize and flushDelay fall back to
// 20 / 500ms when zero.
func NewDrainer(rdb *redis.Client, sink EventSink, log *logrus.Logger, queue string, batchSize int, flushDelay time.Duration) *Drainer {
	if queue == "" {
		queue = DefaultQueueName
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Drainer{
		rdb:        rdb,
		sink:       sink,
		log:        log,
		queue:      queue,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		batch:      make([]database.SessionEvent, 0, batchSize),
	}
}

// Run blocks until ctx is done, reading from the queue and flushing
// batches. A final flush runs on shutdown so accepted events are not
// lost.
func (d *Drainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.flush(context.Background())
			return ctx.Err()
		case <-ticker.C:
			d.drainQueue(ctx)
			d.flush(ctx)
		}
	}
}

// drainQueue moves everything currently on the list into the batch.
func (d *Drainer) drainQueue(ctx context.Context) {
	for {
		raw, err := d.rdb.LPop(ctx, d.queue).Result()
		if errors.Is(err, redis.Nil) {
			return
		}
		if err != nil {
			d.log.Warnf("journal drainer: LPop: %v", err)
			return
		}

		var ev game.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			d.log.Warnf("journal drainer: dropping malformed event: %v", err)
			continue
		}

		d.batchMu.Lock()
		d.batch = append(d.batch, database.SessionEvent{
			SessionCode: ev.SessionCode,
			EventType:   string(ev.Type),
			Payload:     []byte(raw),
			OccurredAt:  ev.Timestamp,
		})
		full := len(d.batch) >= d.batchSize
		d.batchMu.Unlock()

		if full {
			d.flush(ctx)
		}
	}
}

func (d *Drainer) flush(ctx context.Context) {
	d.batchMu.Lock()
	if len(d.batch) == 0 {
		d.batchMu.Unlock()
		return
	}
	pending := d.batch
	d.batch = make([]database.SessionEvent, 0, d.batchSize)
	d.batchMu.Unlock()

	if err := d.sink.InsertSessionEvents(ctx, pending); err != nil {
		d.log.Errorf("journal drainer: flushing %d events: %v", len(pending), err)
		return
	}
	d.log.Debugf("journal drainer: flushed %d events", len(pending))
}
