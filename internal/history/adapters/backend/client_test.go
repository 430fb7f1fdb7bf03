package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/history/models"
	"backoffice/internal/platform/config"
	"backoffice/pkg/platform/circuit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL + "/", Token: "secret", Timeout: time.Second})
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestListClientsEnvelopeAndArrayDecodeAlike(t *testing.T) {
	record := `{"_id":"c1","name":"Jean Dupont","phone_1":20123456,"phone_2":" 98000111 ","email":"j@d.tn","ville":"Sfax","code_postal":3000}`

	bare, err := newTestClient(t, serveJSON("["+record+"]")).ListClients(context.Background())
	require.NoError(t, err)
	env, err := newTestClient(t, serveJSON(`{"data":[`+record+`]}`)).ListClients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, bare, env)
	require.Len(t, bare, 1)
	assert.Equal(t, models.Client{
		ID:         "c1",
		Name:       "Jean Dupont",
		Phones:     []string{"20123456", "98000111"},
		Email:      "j@d.tn",
		City:       "Sfax",
		PostalCode: "3000",
	}, bare[0])
}

func TestListClientsSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	})

	clients, err := c.ListClients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/clients", gotPath)
}

func TestListOrdersCoalescesFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commandes", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"_id":"o1","numero":"CMD-1","createdAt":"2024-03-01T10:00:00Z","totalTTC":"125,500","statut":"livree",
			 "nom":"Dupont","prenom":"Jean","telephone":"20123456","email":"j@d.tn","adresse":"1 rue X","gouvernorat":"Tunis"},
			{"id":42,"number":"CMD-2","date":"2024-03-02","total":19.9,"status":"pending","phone":null,"extra":{"nested":true}}
		]}`))
	})

	orders, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o1 := orders[0]
	assert.Equal(t, "o1", o1.ID)
	assert.Equal(t, "CMD-1", o1.Number)
	assert.InDelta(t, 125.5, o1.Total, 0.0001)
	assert.Equal(t, "livree", o1.Status)
	assert.Equal(t, "20123456", o1.Phone)
	assert.Equal(t, "1 rue X", o1.Address)
	assert.Equal(t, "Tunis", o1.Governorate)
	require.NotNil(t, o1.Date)
	assert.Equal(t, 2024, o1.Date.Year())

	o2 := orders[1]
	assert.Equal(t, "42", o2.ID)
	assert.InDelta(t, 19.9, o2.Total, 0.0001)
	assert.Empty(t, o2.Phone)
	require.NotNil(t, o2.Date)
	assert.Equal(t, time.March, o2.Date.Month())
}

func TestListOrdersUnparseableDateIsNil(t *testing.T) {
	c := newTestClient(t, serveJSON(`[{"_id":"o1","date":"yesterday","total":"n/a"}]`))
	orders, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].Date)
	assert.Zero(t, orders[0].Total)
}

func TestFetchErrorsAreCategorized(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		category Category
		status   int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			category: CategoryOutage,
			status:   http.StatusInternalServerError,
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "no", http.StatusForbidden)
			},
			category: CategoryInternal,
			status:   http.StatusForbidden,
		},
		{
			name:     "malformed json",
			handler:  serveJSON(`[{"_id":`),
			category: CategoryBadData,
		},
		{
			name:     "object without data",
			handler:  serveJSON(`{"data":{"_id":"c1"}}`),
			category: CategoryBadData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(t, tt.handler).ListClients(context.Background())
			require.Error(t, err)

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, models.CollectionClients, fe.Collection)
			assert.Equal(t, tt.category, fe.Category)
			assert.Equal(t, tt.status, fe.Status)
			assert.Equal(t, tt.category, CategoryOf(err))
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(config.BackendConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.ListOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, CategoryTimeout, CategoryOf(err))
	assert.True(t, IsTransient(err))
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(config.BackendConfig{BaseURL: url}).ListClients(context.Background())
	require.Error(t, err)
	assert.Equal(t, CategoryOutage, CategoryOf(err))
}

func TestEmptyEnvelopeIsEmptyList(t *testing.T) {
	clients, err := newTestClient(t, serveJSON(`{"data":null}`)).ListClients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestBreakerOpensOnRepeatedOutages(t *testing.T) {
	var hits atomic.Int32
	healthy := atomic.Bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		serveJSON(`[]`)(w, r)
	}))
	t.Cleanup(srv.Close)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := New(config.BackendConfig{
		BaseURL:         srv.URL,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, WithBreakerClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.ListOrders(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, circuit.StateOpen, c.BreakerState(models.CollectionOrders))
	assert.Equal(t, circuit.StateClosed, c.BreakerState(models.CollectionClients), "breakers are per collection")

	_, err := c.ListOrders(ctx)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, CategoryOutage, CategoryOf(err))
	assert.Equal(t, int32(2), hits.Load(), "open circuit does not reach the backend")

	healthy.Store(true)
	now = now.Add(time.Minute)
	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, circuit.StateClosed, c.BreakerState(models.CollectionOrders))
}

func TestBreakerIgnoresNonTransientErrors(t *testing.T) {
	c := newTestClient(t, serveJSON(`{"data":{"_id":"c1"}}`))
	for i := 0; i < config.DefaultBreakerFailures+1; i++ {
		_, err := c.ListClients(context.Background())
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, circuit.StateClosed, c.BreakerState(models.CollectionClients))
}
