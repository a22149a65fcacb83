package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal/config"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/game"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/server"
	"github.com/raminperspolisi/MafiaVERSE-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archiver game.Archiver
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect archive store")
		}
		defer pg.Close()
		archiver = pg
		log.Info().Msg("game archiving enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set, finished games will not be archived")
	}

	hub := server.NewHub(log)
	registry := game.NewRegistry(cfg.Game, log, hub, archiver)
	registry.StartReaper(ctx)

	srv := server.New(cfg, log, registry, hub).HTTPServer()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
