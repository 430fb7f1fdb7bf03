// Package backend adapts the e-commerce REST backend to the history ports.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/history/models"
	"backoffice/internal/platform/config"
	"backoffice/pkg/platform/circuit"
)

// maxBodyBytes bounds a single collection payload.
const maxBodyBytes = 64 << 20

// ErrCircuitOpen is returned without contacting the backend while a
// collection's breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

// Client reads the clients and orders collections over HTTP.
// It implements ports.ClientSource and ports.OrderSource.
type Client struct {
	baseURL     string
	token       string
	clientsPath string
	ordersPath  string
	http        *http.Client
	logger      *slog.Logger
	breakers    map[models.Collection]*circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger used for breaker transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBreakerClock overrides the breakers' time source, for tests.
func WithBreakerClock(now func() time.Time) Option {
	return func(c *Client) {
		for _, b := range c.breakers {
			circuit.WithClock(now)(b)
		}
	}
}

// New constructs a backend client from configuration.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		clientsPath: withDefault(cfg.ClientsPath, config.DefaultClientsPath),
		ordersPath:  withDefault(cfg.OrdersPath, config.DefaultOrdersPath),
		http:        &http.Client{Timeout: cfg.Timeout},
		logger:      slog.New(slog.DiscardHandler),
	}
	if c.http.Timeout <= 0 {
		c.http.Timeout = config.DefaultTimeout
	}
	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = config.DefaultBreakerFailures
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = config.DefaultBreakerCooldown
	}
	c.breakers = map[models.Collection]*circuit.Breaker{}
	for _, col := range []models.Collection{models.CollectionClients, models.CollectionOrders} {
		c.breakers[col] = circuit.New(string(col),
			circuit.WithFailureThreshold(failures),
			circuit.WithCooldown(cooldown),
		)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ListClients fetches and normalizes the client collection.
func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	body, err := c.fetch(ctx, models.CollectionClients, c.clientsPath)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireClient](body)
	if err != nil {
		return nil, &FetchError{Collection: models.CollectionClients, Category: CategoryBadData, Err: err}
	}
	clients := make([]models.Client, 0, len(wire))
	for _, w := range wire {
		clients = append(clients, w.toModel())
	}
	return clients, nil
}

// ListOrders fetches and normalizes the order collection.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	body, err := c.fetch(ctx, models.CollectionOrders, c.ordersPath)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireOrder](body)
	if err != nil {
		return nil, &FetchError{Collection: models.CollectionOrders, Category: CategoryBadData, Err: err}
	}
	orders := make([]models.Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toModel())
	}
	return orders, nil
}

// BreakerState reports the circuit state for a collection.
func (c *Client) BreakerState(collection models.Collection) circuit.State {
	if b, ok := c.breakers[collection]; ok {
		return b.State()
	}
	return circuit.StateClosed
}

func (c *Client) fetch(ctx context.Context, collection models.Collection, path string) ([]byte, error) {
	b := c.breakers[collection]
	if !b.Allow() {
		return nil, &FetchError{Collection: collection, Category: CategoryOutage, Err: ErrCircuitOpen}
	}

	body, err := c.do(ctx, collection, path)
	switch {
	case err == nil || !IsTransient(err):
		if _, change := b.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "backend circuit closed", "collection", collection)
		}
	case ctx.Err() == nil:
		if _, change := b.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "backend circuit opened", "collection", collection, "error", err)
		}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, collection models.Collection, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &FetchError{Collection: collection, Category: CategoryInternal, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: collection, Category: transportCategory(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Collection: collection, Category: transportCategory(err), Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Collection: collection,
			Category:   statusCategory(resp.StatusCode),
			Status:     resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", snippet(body)),
		}
	}
	return body, nil
}

func transportCategory(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return CategoryTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CategoryInternal
	}
	return CategoryOutage
}

func statusCategory(status int) Category {
	switch {
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return CategoryTimeout
	case status == http.StatusTooManyRequests || status >= 500:
		return CategoryOutage
	default:
		return CategoryInternal
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty body"
	}
	return s
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
