package orders

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteRepo(t *testing.T) *Repository {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(orderNumber, sessionID string, createdAt time.Time) *domain.OrderRecord {
	return &domain.OrderRecord{
		SchemaVersion: domain.OrderRecordVersion,
		OrderNumber:   orderNumber,
		SessionID:     sessionID,
		Items: []domain.LineItem{
			{
				ID:        "li-1",
				Product:   domain.ProductRef{ID: "8", Name: "Mocha", BasePrice: decimal.RequireFromString("4.75")},
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("4.99"),
			},
		},
		Subtotal:      decimal.RequireFromString("9.98"),
		Tax:           decimal.RequireFromString("0.7984"),
		DeliveryFee:   decimal.Zero,
		Total:         decimal.RequireFromString("10.7784"),
		Currency:      "USD",
		OrderType:     domain.OrderTypePickup,
		PaymentMethod: domain.PaymentCard,
		CardLast4:     "4242",
		Customer: domain.ContactDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "555-0100",
		},
		ReadyWindow: domain.OrderTypePickup.ReadyWindow(),
		CreatedAt:   createdAt,
	}
}

// testRepositoryContract runs against every dialect.
func testRepositoryContract(t *testing.T, setup func(t *testing.T) *Repository) {
	t.Run("create and get", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		rec := testRecord("ABCD1234", "s-1", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

		require.NoError(t, repo.CreateOrder(ctx, rec))

		got, err := repo.GetOrderByNumber(ctx, "ABCD1234")
		require.NoError(t, err)
		assert.Equal(t, "s-1", got.SessionID)
		assert.Equal(t, domain.OrderRecordVersion, got.SchemaVersion)
		assert.True(t, rec.Total.Equal(got.Total))
		assert.True(t, rec.Tax.Equal(got.Tax))
		assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, "4242", got.CardLast4)
		assert.Equal(t, "Ada", got.Customer.FirstName)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("unknown order", func(t *testing.T) {
		repo := setup(t)

		got, err := repo.GetOrderByNumber(context.Background(), "NOPE0000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Nil(t, got)
	})

	t.Run("duplicate order number", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		now := time.Now().UTC()

		require.NoError(t, repo.CreateOrder(ctx, testRecord("DUPE0001", "s-1", now)))
		err := repo.CreateOrder(ctx, testRecord("DUPE0001", "s-2", now))
		assert.ErrorIs(t, err, ErrDuplicateOrder)

		events, err := repo.GetUnprocessedEvents(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, events, 1, "failed insert must not leave an outbox event")
	})

	t.Run("list by session newest first", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		require.NoError(t, repo.CreateOrder(ctx, testRecord("OLD00001", "s-1", base)))
		require.NoError(t, repo.CreateOrder(ctx, testRecord("NEW00002", "s-1", base.Add(time.Hour))))
		require.NoError(t, repo.CreateOrder(ctx, testRecord("OTHER003", "s-2", base.Add(2*time.Hour))))

		records, err := repo.ListOrdersBySession(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "NEW00002", records[0].OrderNumber)
		assert.Equal(t, "OLD00001", records[1].OrderNumber)

		none, err := repo.ListOrdersBySession(ctx, "s-unknown")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("outbox event written with order", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		require.NoError(t, repo.CreateOrder(ctx, testRecord("EVNT0001", "s-1", time.Now().UTC())))

		events, err := repo.GetUnprocessedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "EVNT0001", events[0].AggregateID)
		assert.Equal(t, EventTypeOrderPlaced, events[0].EventType)
		assert.NotEmpty(t, events[0].EventID)

		var payload OrderPlacedEvent
		require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
		assert.Equal(t, "EVNT0001", payload.OrderNumber)
		assert.Equal(t, "10.7784", payload.Total)
		assert.NotContains(t, string(events[0].Payload), "ada@example.com")
	})

	t.Run("mark event processed", func(t *testing.T) {
		repo := setup(t)
		ctx := context.Background()

		require.NoError(t, repo.CreateOrder(ctx, testRecord("MARK0001", "s-1", time.Now().UTC())))
		require.NoError(t, repo.CreateOrder(ctx, testRecord("MARK0002", "s-1", time.Now().UTC())))

		events, err := repo.GetUnprocessedEvents(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "MARK0001", events[0].AggregateID)

		require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))
		assert.ErrorIs(t, repo.MarkEventAsProcessed(ctx, events[0].ID), ErrEventNotFound)

		events, err = repo.GetUnprocessedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "MARK0002", events[0].AggregateID)
	})

	t.Run("migrations idempotent", func(t *testing.T) {
		repo := setup(t)
		assert.NoError(t, repo.RunMigrations())
	})
}

func TestSQLiteRepository(t *testing.T) {
	testRepositoryContract(t, setupSQLiteRepo)
}

func TestSQLiteRepository_CancelledContext(t *testing.T) {
	repo := setupSQLiteRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.CreateOrder(ctx, testRecord("CNCL0001", "s-1", time.Now()))
	assert.Error(t, err)

	_, err = repo.ListOrdersBySession(context.Background(), "s-1")
	require.NoError(t, err)
}
