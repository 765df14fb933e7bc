package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cache"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/catalog"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/checkout"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/orders"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProcessor approves every charge unless Err is set.
type MockProcessor struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

func (m *MockProcessor) Process(_ context.Context, _ checkout.Charge) (*checkout.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return &checkout.Receipt{Reference: uuid.NewString(), ProcessedAt: time.Now()}, nil
}

func (m *MockProcessor) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

type testServer struct {
	router    chi.Router
	processor *MockProcessor
	orderRepo *orders.Repository
}

// newTestServer wires the real services on SQLite temp files and in-memory
// cart and slot storage.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, zap.NewNop(), RouterConfig{})
}

func newTestServerWith(t *testing.T, log *zap.Logger, rc RouterConfig) *testServer {
	t.Helper()
	rc.RequestTimeout = 10 * time.Second
	rc.MaxRequestBodySize = 1 << 20
	dir := t.TempDir()

	catalogRepo, err := catalog.NewRepository(filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, catalogRepo.RunMigrations())
	t.Cleanup(func() { catalogRepo.Close() })

	orderRepo, err := orders.NewSQLiteRepository(filepath.Join(dir, "orders.db"))
	require.NoError(t, err)
	require.NoError(t, orderRepo.RunMigrations())
	t.Cleanup(func() { orderRepo.Close() })

	menu := pricing.DefaultMenu()
	carts := cart.NewCartService(cache.NewMemoryCache(time.Hour), pricing.DefaultRates(), log)
	ordersService := orders.NewOrdersService(orderRepo, orders.NewMemorySlot(), log)
	processor := &MockProcessor{}
	checkouts := checkout.NewCheckoutService(carts, checkout.Dependencies{
		Rates:     pricing.DefaultRates(),
		Processor: processor,
		Recorder:  ordersService,
		Log:       log,
	})

	router := NewRouter(Handlers{
		Products: NewProductHandler(catalogRepo, menu, 5*time.Second, log),
		Cart:     NewCartHandler(carts, catalogRepo, menu, 5*time.Second, log),
		Checkout: NewCheckoutHandler(checkouts, log),
		Orders:   NewOrdersHandler(ordersService, 5*time.Second, log),
	}, rc, log)

	return &testServer{router: router, processor: processor, orderRepo: orderRepo}
}

func (s *testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
