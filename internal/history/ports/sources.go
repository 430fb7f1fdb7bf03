//go:generate mockgen -source=sources.go -destination=mocks/mocks.go -package=mocks

package ports

import (
	"context"

	"backoffice/internal/history/models"
)

// ClientSource lists registered clients.
// This port lets the history service read the client collection without
// depending on the REST backend or any specific transport.
type ClientSource interface {
	// ListClients returns every registered client, in backend order.
	ListClients(ctx context.Context) ([]models.Client, error)
}

// OrderSource lists orders, each carrying its buyer's identity snapshot.
type OrderSource interface {
	// ListOrders returns every order, in backend order.
	ListOrders(ctx context.Context) ([]models.Order, error)
}
