package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"backoffice/internal/history"
	historymetrics "backoffice/internal/history/metrics"
	httpapi "backoffice/internal/http"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/httpserver"
	"backoffice/internal/platform/logger"
	platformmetrics "backoffice/internal/platform/metrics"
	"backoffice/internal/platform/redis"

	goredis "github.com/redis/go-redis/v9"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, config.FromEnv())
	stop()
	os.Exit(code)
}

// run serves until ctx is done and returns the process exit code. Deferred
// cleanups all run before it returns.
func run(ctx context.Context, cfg config.Server) int {
	log := logger.New(cfg.Log)

	if cfg.Backend.BaseURL == "" {
		log.Error("BACKEND_URL is required")
		return 1
	}
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty; every admin request will be rejected")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return 1
	}

	var rdb *goredis.Client
	health := map[string]httpapi.HealthCheck{}
	if redisClient != nil {
		rdb = redisClient.Client
		health["redis"] = redisClient.Health
		defer func() { _ = redisClient.Close() }()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	module := history.New(cfg, log, rdb, historymetrics.NewWithRegisterer(reg))
	router := httpapi.NewRouter(httpapi.Deps{
		AdminToken: cfg.AdminToken,
		Logger:     log,
		Metrics:    platformmetrics.NewWithRegisterer(reg),
		Gatherer:   reg,
		Health:     health,
		Modules:    []httpapi.Registrar{module.Handler},
	})

	srv := httpserver.New(cfg.Addr, router, cfg.Backend.Timeout)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting history service", "addr", cfg.Addr, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error("server error", "error", err)
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return 1
	}
	log.Info("history service stopped")
	return 0
}
