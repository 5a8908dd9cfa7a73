package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/jobbee-api/config"
	"github.com/ErlanBelekov/jobbee-api/internal/health"
	"github.com/ErlanBelekov/jobbee-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/jobbee-api/internal/janitor"
	ctxlog "github.com/ErlanBelekov/jobbee-api/internal/log"
	"github.com/ErlanBelekov/jobbee-api/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.IsLocal(), cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker([]health.Dependency{
		{Name: "postgres", Pinger: pool, Critical: true},
	}, logger, prometheus.DefaultRegisterer)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	j := janitor.New(postgres.NewUserRepository(pool), logger, 30*time.Second)
	if err := j.Start(ctx, cfg.JanitorCron); err != nil {
		logger.Error("janitor", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
