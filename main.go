package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"wreckers/internal/config"
	"wreckers/internal/coordinator"
	"wreckers/internal/game"
	"wreckers/internal/leaderboard"
	"wreckers/internal/server"
	"wreckers/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	var claimer game.Claimer
	var board leaderboard.Store
	if cfg.StoreURL != "" {
		db, err := sql.Open("postgres", cfg.StoreURL)
		if err != nil {
			log.Fatal("opening store:", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pgClaims := coordinator.NewPostgres(db)
		pgBoard := leaderboard.NewPostgres(db)
		if err := pgClaims.EnsureSchema(ctx); err != nil {
			log.Fatal("preparing claim schema:", err)
		}
		if err := pgBoard.EnsureSchema(ctx); err != nil {
			log.Fatal("preparing leaderboard schema:", err)
		}
		cancel()
		claimer = coordinator.NewCached(pgClaims, 300*time.Millisecond)
		board = pgBoard
		slog.Info("using postgres store")
	} else {
		claimer = coordinator.NewMemory()
		board = leaderboard.NewMemory()
		slog.Info("no store configured, using in-process coordination")
	}

	room := game.NewRoom(game.Options{
		Signer:        token.NewSigner(cfg.TokenSecret),
		Claimer:       claimer,
		Scores:        board,
		InstanceID:    cfg.InstanceID,
		MatchDuration: cfg.MatchDuration,
	})
	defer room.Shutdown()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(room, board).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", cfg.ListenAddr, "instance", cfg.InstanceID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed:", err)
	}
}
