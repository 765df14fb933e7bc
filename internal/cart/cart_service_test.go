package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(c *MockCache) *Service {
	return NewCartService(c, pricing.DefaultRates(), zap.NewNop())
}

func TestCartService_StoreIsPerSession(t *testing.T) {
	svc := newTestService(NewMockCache())
	ctx := context.Background()

	svc.AddItem(ctx, "alice", lineItem("1", "3.50", 1))

	assert.Equal(t, 1, svc.Store(ctx, "alice").Len())
	assert.Equal(t, 0, svc.Store(ctx, "bob").Len())
	assert.Same(t, svc.Store(ctx, "alice"), svc.Store(ctx, "alice"))
}

func TestCartService_RestoresFromCache(t *testing.T) {
	mc := NewMockCache()
	item := lineItem("2", "4.50", 2)
	item.ID = "cached"
	mc.Snapshots["session-1"] = &domain.CartSnapshot{SessionID: "session-1", Items: []domain.LineItem{item}}
	svc := newTestService(mc)

	view := svc.View(context.Background(), "session-1", domain.OrderTypePickup)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "cached", view.Items[0].ID)
	assert.True(t, dec("9").Equal(view.Totals.Subtotal))
}

func TestCartService_RestoreHitsCacheOncePerSession(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Store(context.Background(), "session-1")
		}()
	}
	wg.Wait()
	svc.Store(context.Background(), "session-1")

	mc.mu.Lock()
	defer mc.mu.Unlock()
	assert.Equal(t, 1, mc.GetCalls)
}

func TestCartService_PersistsAfterMutation(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)
	ctx := context.Background()

	added := svc.AddItem(ctx, "session-1", lineItem("1", "3.50", 1))
	_, err := svc.UpdateQuantity(ctx, "session-1", added.ID, 3)
	require.NoError(t, err)

	snapshot, ok := mc.snapshot("session-1")
	require.True(t, ok)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 3, snapshot.Items[0].Quantity)
	assert.Equal(t, "session-1", snapshot.SessionID)
}

func TestCartService_ClearDeletesSnapshot(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)
	ctx := context.Background()

	svc.AddItem(ctx, "session-1", lineItem("1", "3.50", 1))
	svc.ClearCart(ctx, "session-1")

	_, ok := mc.snapshot("session-1")
	assert.False(t, ok)
	assert.Contains(t, mc.Deleted, "session-1")
}

func TestCartService_CacheFailuresDoNotFailOperations(t *testing.T) {
	mc := NewMockCache()
	mc.GetErr = errors.New("connection refused")
	mc.SetErr = errors.New("connection refused")
	mc.DeleteErr = errors.New("connection refused")
	svc := newTestService(mc)
	ctx := context.Background()

	added := svc.AddItem(ctx, "session-1", lineItem("1", "3.50", 1))
	updated, err := svc.UpdateQuantity(ctx, "session-1", added.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)

	svc.RemoveItem(ctx, "session-1", added.ID)
	assert.True(t, svc.Store(ctx, "session-1").IsEmpty())
}

func TestCartService_UpdateQuantityUnknownItem(t *testing.T) {
	svc := newTestService(NewMockCache())

	_, err := svc.UpdateQuantity(context.Background(), "session-1", "missing", 2)

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCartService_ViewTotalsByOrderType(t *testing.T) {
	svc := newTestService(NewMockCache())
	ctx := context.Background()
	svc.AddItem(ctx, "session-1", lineItem("1", "3.50", 1))
	svc.AddItem(ctx, "session-1", lineItem("7", "18.99", 1))

	pickup := svc.View(ctx, "session-1", domain.OrderTypePickup)
	delivery := svc.View(ctx, "session-1", domain.OrderTypeDelivery)
	unknown := svc.View(ctx, "session-1", domain.OrderType("drone"))

	assert.True(t, dec("24.2892").Equal(pickup.Totals.Total), "pickup %s", pickup.Totals.Total)
	assert.True(t, dec("30.2792").Equal(delivery.Totals.Total), "delivery %s", delivery.Totals.Total)
	assert.Equal(t, domain.OrderTypePickup, unknown.OrderType)
	assert.Equal(t, 2, delivery.Totals.ItemCount)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCartService_ViewDoesNotCreateStore(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)

	view := svc.View(context.Background(), "anonymous", domain.OrderTypePickup)

	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.True(t, view.Totals.Total.IsZero())
	assert.Equal(t, 0, svc.Sessions())
}

func TestCartService_EvictsIdleSessionsAndRestoresFromCache(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)
	clock := newFakeClock()
	svc.now = clock.Now
	ctx := context.Background()

	svc.AddItem(ctx, "alice", lineItem("1", "3.50", 2))
	svc.Store(ctx, "bob")
	require.Equal(t, 2, svc.Sessions())

	clock.Advance(31 * time.Minute)

	assert.Equal(t, 2, svc.Evict(30*time.Minute))
	assert.Equal(t, 0, svc.Sessions())

	snapshot, ok := mc.snapshot("alice")
	require.True(t, ok)
	assert.Len(t, snapshot.Items, 1)

	restored := svc.Store(ctx, "alice")
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, 2, restored.Items()[0].Quantity)
	assert.True(t, dec("7").Equal(restored.Subtotal()))
}

func TestCartService_EvictKeepsRecentlyUsedSessions(t *testing.T) {
	svc := newTestService(NewMockCache())
	clock := newFakeClock()
	svc.now = clock.Now
	ctx := context.Background()

	svc.AddItem(ctx, "alice", lineItem("1", "3.50", 1))
	svc.AddItem(ctx, "bob", lineItem("2", "4.50", 1))

	clock.Advance(20 * time.Minute)
	svc.View(ctx, "alice", domain.OrderTypePickup)
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, svc.Evict(30*time.Minute))
	assert.Equal(t, 1, svc.Sessions())

	assert.Equal(t, 1, svc.Store(ctx, "alice").Len())
}

func TestCartService_EvictKeepsCartWhenCacheWriteFails(t *testing.T) {
	mc := NewMockCache()
	svc := newTestService(mc)
	clock := newFakeClock()
	svc.now = clock.Now
	ctx := context.Background()

	svc.AddItem(ctx, "alice", lineItem("1", "3.50", 1))
	mc.mu.Lock()
	mc.SetErr = errors.New("connection refused")
	mc.mu.Unlock()

	clock.Advance(time.Hour)

	assert.Equal(t, 0, svc.Evict(30*time.Minute))
	assert.Equal(t, 1, svc.Sessions())
	assert.Equal(t, 1, svc.Store(ctx, "alice").Len())
}
