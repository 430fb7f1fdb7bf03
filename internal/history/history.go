// Package history wires the client history module: backend adapter, session
// store, service and HTTP handler.
package history

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/history/adapters/backend"
	"backoffice/internal/history/handler"
	"backoffice/internal/history/metrics"
	"backoffice/internal/history/service"
	"backoffice/internal/history/store/session"
	"backoffice/internal/platform/config"
)

// Module exposes the wired history components.
type Module struct {
	Backend *backend.Client
	Service *service.Service
	Handler *handler.Handler
}

// New builds the module. Sessions live in Redis when rdb is non-nil, in
// process memory otherwise.
func New(cfg config.Server, logger *slog.Logger, rdb *redis.Client, m *metrics.Metrics) *Module {
	client := backend.New(cfg.Backend, backend.WithLogger(logger))

	var store service.SessionStore
	if rdb != nil {
		store = session.NewRedis(rdb, session.WithTokenTTL(2*cfg.SessionTTL))
		logger.Info("history sessions stored in redis")
	} else {
		store = session.NewInMemory()
		logger.Info("history sessions stored in memory")
	}

	svc := service.New(client, client, store,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithSessionTTL(cfg.SessionTTL),
	)
	return &Module{
		Backend: client,
		Service: svc,
		Handler: handler.New(svc, logger),
	}
}
