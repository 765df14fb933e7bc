package orders

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const EventTypeOrderPlaced = "OrderPlaced"

//go:embed migrations
var migrationsFS embed.FS

type OutboxEvent struct {
	ID          int64
	EventID     string
	AggregateID string // order number
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// OrderPlacedEvent is the outbox payload for a new order. Customer contact
// details stay in the orders table.
type OrderPlacedEvent struct {
	OrderNumber   string               `json:"order_number"`
	SessionID     string               `json:"session_id"`
	OrderType     domain.OrderType     `json:"order_type"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Items         []domain.LineItem    `json:"items"`
	Subtotal      string               `json:"subtotal"`
	Tax           string               `json:"tax"`
	DeliveryFee   string               `json:"delivery_fee"`
	Total         string               `json:"total"`
	Currency      string               `json:"currency"`
	ReadyWindow   domain.ReadyWindow   `json:"ready_window"`
	PlacedAt      time.Time            `json:"placed_at"`
}

type Repository struct {
	db      *sql.DB
	dialect string
}

type RepoInterface interface {
	CreateOrder(ctx context.Context, record *domain.OrderRecord) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.OrderRecord, error)
	ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.OrderRecord, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	RunMigrations() error
	Close() error
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, dialect: storage.DialectSQLite}, nil
}

func NewPostgresRepository(cred *storage.Credentials) (*Repository, error) {
	db, err := storage.OpenPostgres(cred)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, dialect: storage.DialectPostgres}, nil
}

func (r *Repository) Dialect() string {
	return r.dialect
}

func (r *Repository) RunMigrations() error {
	return storage.RunMigrations(r.db, r.dialect, migrationsFS, path.Join("migrations", r.dialect), "orders_schema_migrations")
}

// CreateOrder stores the order and its OrderPlaced outbox event in one
// transaction.
func (r *Repository) CreateOrder(ctx context.Context, record *domain.OrderRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal order record: %w", err)
	}

	payload, err := json.Marshal(OrderPlacedEvent{
		OrderNumber:   record.OrderNumber,
		SessionID:     record.SessionID,
		OrderType:     record.OrderType,
		PaymentMethod: record.PaymentMethod,
		Items:         record.Items,
		Subtotal:      record.Subtotal.String(),
		Tax:           record.Tax.String(),
		DeliveryFee:   record.DeliveryFee.String(),
		Total:         record.Total.String(),
		Currency:      record.Currency,
		ReadyWindow:   record.ReadyWindow,
		PlacedAt:      record.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := record.CreatedAt.UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (order_number, session_id, order_type, payment_method, subtotal, tax, delivery_fee,
		                     total, currency, schema_version, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.OrderNumber,
		record.SessionID,
		string(record.OrderType),
		string(record.PaymentMethod),
		record.Subtotal,
		record.Tax,
		record.DeliveryFee,
		record.Total,
		record.Currency,
		record.SchemaVersion,
		string(recordJSON),
		createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_events (event_id, aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(),
		record.OrderNumber,
		EventTypeOrderPlaced,
		string(payload),
		createdAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.OrderRecord, error) {
	var recordJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT record FROM orders WHERE order_number = $1`, orderNumber).Scan(&recordJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by number: %w", err)
	}
	return decodeRecord(recordJSON)
}

// ListOrdersBySession returns the session's orders, newest first.
func (r *Repository) ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT record FROM orders WHERE session_id = $1 ORDER BY created_at DESC, order_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query orders by session: %w", err)
	}
	defer rows.Close()

	var records []*domain.OrderRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		record, err := decodeRecord(recordJSON)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, aggregate_id, event_type, payload, created_at
		 FROM order_events
		 WHERE processed_at IS NULL
		 ORDER BY id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = $1 WHERE id = $2 AND processed_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func decodeRecord(data []byte) (*domain.OrderRecord, error) {
	var record domain.OrderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal order record: %w", err)
	}
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqliteErr.Error(), "UNIQUE")
		}
	}
	return false
}
