// internal/cli/drain.go
package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quizfire/quizfire/internal/config"
	"github.com/quizfire/quizfire/internal/database"
	"github.com/quizfire/quizfire/internal/journal"
)

// newDrainCmd runs the event drainer: it pops journaled game events
// off the Redis queue and batches them into the session_events table.
// Intended to run as a sidecar next to the server.
func newDrainCmd() *cobra.Command {
	var (
		batchSize  int
		flushDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Persist journaled game events from Redis to Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := newLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := database.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()

			queue := cfg.Redis.Queue
			if queue == "" {
				queue = journal.DefaultQueueName
			}

			drainer := journal.NewDrainer(rdb, store, logger, queue, batchSize, flushDelay)
			logger.Infof("draining %s into session_events", queue)
			if err := drainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 20, "events per insert batch")
	cmd.Flags().DurationVar(&flushDelay, "flush-delay", 500*time.Millisecond, "max time before a partial batch is flushed")
	return cmd
}
