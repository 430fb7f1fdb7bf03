package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"backoffice/internal/history/models"
)

// snapshot is one read of the backend collections. A failed collection is
// empty and listed in degraded.
type snapshot struct {
	clients  []models.Client
	orders   []models.Order
	degraded []models.Collection
}

// gather fetches the requested collections in parallel. Fetch errors never
// cancel the sibling fetch: each goroutine logs its failure and returns nil,
// so a partial outage still yields results from the healthy collection.
func (s *Service) gather(ctx context.Context, withClients, withOrders bool) *snapshot {
	snap := &snapshot{clients: []models.Client{}, orders: []models.Order{}}
	var clientsFailed, ordersFailed bool

	// Goroutines always return nil, so gctx is never canceled by a sibling
	// and Wait has no error to report.
	g, gctx := errgroup.WithContext(ctx)
	if withClients {
		g.Go(func() error {
			snap.clients, clientsFailed = fetch(gctx, s, models.CollectionClients, s.clients.ListClients)
			return nil
		})
	}
	if withOrders {
		g.Go(func() error {
			snap.orders, ordersFailed = fetch(gctx, s, models.CollectionOrders, s.orders.ListOrders)
			return nil
		})
	}
	_ = g.Wait()

	if clientsFailed {
		snap.degraded = append(snap.degraded, models.CollectionClients)
	}
	if ordersFailed {
		snap.degraded = append(snap.degraded, models.CollectionOrders)
	}
	return snap
}

func fetch[T any](ctx context.Context, s *Service, collection models.Collection, list func(context.Context) ([]T, error)) ([]T, bool) {
	start := time.Now()
	items, err := list(ctx)
	s.metrics.ObserveFetch(string(collection), time.Since(start), err != nil)

	if err != nil {
		s.logger.WarnContext(ctx, "backend fetch failed, continuing without collection",
			"collection", collection,
			"error", err,
		)
		return []T{}, true
	}
	if items == nil {
		items = []T{}
	}
	return items, false
}
