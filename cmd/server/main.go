package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldops/backend/internal/config"
	"github.com/fieldops/backend/internal/db"
	httpapi "github.com/fieldops/backend/internal/http"
	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/notify"
	"github.com/fieldops/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "fieldops-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate db")
	}

	var notifier notify.Adapter
	if cfg.NotifyURL == "" {
		notifier = &notify.MockAdapter{}
		logger.Info().Msg("using mock notifier")
	} else {
		notifier = notify.HTTPAdapter{BaseURL: cfg.NotifyURL}
	}

	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

	suggestions := &service.SuggestionService{Store: store, Metrics: sink, Logger: logger}
	simulator := &service.SimulationService{Store: store, Notifier: notifier, Metrics: sink, Logger: logger}

	router := httpapi.Router(cfg, store, suggestions, simulator, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
