// Package main provides the API server entry point for the intake backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/intake-backend/internal/api"
	"github.com/intake-backend/internal/config"
	"github.com/intake-backend/internal/logging"
	"github.com/intake-backend/internal/service"
	"github.com/intake-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().
		Str("env", cfg.Env).
		Str("level", cfg.Logging.Level).
		Str("format", cfg.Logging.Format).
		Msg("logging initialized")

	db, err := storage.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	submissionRepo := storage.NewSubmissionRepository(db)
	userRepo := storage.NewUserRepository(db)
	projectRepo := storage.NewProjectRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, projectRepo)
	userService := service.NewUserService(userRepo)

	limiter := api.NewLimiterFromConfig(cfg)

	server := api.NewServer(&api.ServerConfig{
		Addr:          cfg.Server.Addr(),
		Environment:   cfg.Env,
		CORSOrigins:   cfg.CORS.Origins,
		AdminPassword: cfg.Admin.Password,
	}, submissionService, userService, db, limiter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}

	log.Info().Msg("server stopped")
}
