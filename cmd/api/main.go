package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/catalog"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/config"
	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"
	"bookreview/internal/policy"
	"bookreview/internal/profile"
	"bookreview/internal/review"
	"bookreview/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", database.RedactDSN(cfg.DB.DSN)).Msg("cannot open database")
	}
	defer pool.Close()
	log.Info().Msg("database connection OK")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := NewRouter(newServices(pool, cfg), RouterOptions{
		Secret:      cfg.Auth.Secret,
		CORSOrigins: cfg.CORS.OriginList(),
		MaxBody:     cfg.HTTP.MaxBody,
		HSTS:        cfg.HTTP.HSTS,
		RateLimit:   httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Metrics:     httpx.NewMetrics(registry),
		Ready:       pool.Ping,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		log.Info().Dur("drain", cfg.HTTP.Drain).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Drain)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func newServices(pool *pgxpool.Pool, cfg *config.Config) Services {
	timeout := cfg.DB.Timeout
	engine := policy.NewEngine()

	bookRepo := book.NewPostgresRepo(pool, timeout)
	reviewRepo := review.NewPostgresRepo(pool, timeout)

	sessions := session.NewService(
		session.NewPostgresRepo(pool, timeout),
		session.NewBlacklistPostgresRepo(pool, timeout),
	)

	return Services{
		Auth:     auth.NewService(auth.NewPostgresRepo(pool, timeout), sessions, cfg.Auth.Secret, cfg.Auth.AccessTTL),
		Sessions: sessions,
		Profiles: profile.NewService(profile.NewPostgresRepo(pool, timeout), bookRepo, reviewRepo, engine),
		Books:    book.NewService(bookRepo, engine),
		Reviews:  review.NewService(reviewRepo, engine),
		Catalog:  catalog.NewService(catalog.NewPostgresRepo(pool, timeout), reviewRepo),
	}
}
