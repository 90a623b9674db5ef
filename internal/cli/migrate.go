// internal/cli/migrate.go
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quizfire/quizfire/internal/config"
	"github.com/quizfire/quizfire/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
				return store.Migrate(ctx)
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo question packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
				return store.Seed(ctx)
			})
		},
	}
}

// withStore connects, runs fn, and closes the pool.
func withStore(ctx context.Context, fn func(context.Context, *database.Store) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := database.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
