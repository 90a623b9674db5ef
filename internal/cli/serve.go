// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quizfire/quizfire/internal/config"
	"github.com/quizfire/quizfire/internal/database"
	"github.com/quizfire/quizfire/internal/game"
	"github.com/quizfire/quizfire/internal/handlers"
	"github.com/quizfire/quizfire/internal/journal"
	"github.com/quizfire/quizfire/internal/ws"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Event journaling is optional; without Redis the game runs fine,
	// events just aren't persisted.
	var jnl game.Journal
	if cfg.Redis.Addr != "" {
		j, err := journal.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Queue)
		if err != nil {
			return err
		}
		defer j.Close()
		jnl = j
	} else {
		logger.Warn("redis not configured, event journaling disabled")
	}

	clock := clockwork.NewRealClock()
	pingInterval := config.Duration(cfg.WS.PingInterval, 30*time.Second)
	staleAfter := config.Duration(cfg.WS.LivenessWindow, 2*pingInterval)

	hub := ws.NewHub(clock, logger, pingInterval, staleAfter)
	timers := game.NewTimerRegistry(clock, logger)
	machine := game.NewMachine(store, timers, hub, jnl, clock, logger, game.Config{
		MinRevealDelay: config.Duration(cfg.Game.MinRevealDelay, 5*time.Second),
		RevealPause:    config.Duration(cfg.Game.RevealPause, 500*time.Millisecond),
		CodeAttempts:   cfg.Game.CodeAttempts,
	})

	srv := handlers.NewServer(machine, hub, store, logger)
	httpServer := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		logger.Infof("quizfire listening on :%s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		timers.StopAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		hub.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
