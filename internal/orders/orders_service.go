package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"go.uber.org/zap"
)

// History is the part of the repository the service needs.
type History interface {
	CreateOrder(ctx context.Context, record *domain.OrderRecord) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.OrderRecord, error)
	ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.OrderRecord, error)
}

type Service struct {
	history History
	slot    Slot
	log     *zap.Logger
}

func NewOrdersService(history History, slot Slot, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{history: history, slot: slot, log: log}
}

// Record writes the order to history and then to the session's last-order
// slot. Only the history write can fail the checkout.
func (s *Service) Record(ctx context.Context, record *domain.OrderRecord) error {
	if err := s.history.CreateOrder(ctx, record); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.slot.Save(ctx, record); err != nil {
		s.log.Warn("last order slot save failed",
			zap.String("session_id", record.SessionID),
			zap.String("order_number", record.OrderNumber),
			zap.Error(err))
	}

	s.log.Info("order recorded",
		zap.String("session_id", record.SessionID),
		zap.String("order_number", record.OrderNumber),
		zap.String("order_type", string(record.OrderType)),
		zap.String("total", record.Total.StringFixed(2)))
	return nil
}

// LastOrder returns the session's most recent order. A slot miss falls back
// to history; a slot record with another schema version is reported as is.
func (s *Service) LastOrder(ctx context.Context, sessionID string) (*domain.OrderRecord, error) {
	record, err := s.slot.Load(ctx, sessionID)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, ErrUnsupportedVersion) {
		return nil, err
	}
	if !errors.Is(err, ErrOrderNotFound) {
		s.log.Warn("last order slot load failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	records, err := s.history.ListOrdersBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrOrderNotFound
	}
	return records[0], nil
}

// History lists the session's orders, newest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]*domain.OrderRecord, error) {
	records, err := s.history.ListOrdersBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if records == nil {
		records = []*domain.OrderRecord{}
	}
	return records, nil
}

// Get returns one of the session's orders. Orders of other sessions are
// reported as not found.
func (s *Service) Get(ctx context.Context, sessionID, orderNumber string) (*domain.OrderRecord, error) {
	record, err := s.history.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if record.SessionID != sessionID {
		return nil, ErrOrderNotFound
	}
	return record, nil
}
