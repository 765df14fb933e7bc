package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
)

// MockHistory is an in-memory History with injectable failures.
type MockHistory struct {
	mu        sync.Mutex
	Orders    []*domain.OrderRecord
	CreateErr error
	ListErr   error
	ListCalls int
}

func (m *MockHistory) CreateOrder(_ context.Context, record *domain.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, o := range m.Orders {
		if o.OrderNumber == record.OrderNumber {
			return ErrDuplicateOrder
		}
	}
	m.Orders = append(m.Orders, record)
	return nil
}

func (m *MockHistory) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MockHistory) ListOrdersBySession(_ context.Context, sessionID string) ([]*domain.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*domain.OrderRecord
	for _, o := range m.Orders {
		if o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MockSlot wraps a MemorySlot with injectable failures.
type MockSlot struct {
	*MemorySlot
	SaveErr error
	LoadErr error
}

func NewMockSlot() *MockSlot {
	return &MockSlot{MemorySlot: NewMemorySlot()}
}

func (m *MockSlot) Save(ctx context.Context, record *domain.OrderRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	return m.MemorySlot.Save(ctx, record)
}

func (m *MockSlot) Load(ctx context.Context, sessionID string) (*domain.OrderRecord, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.MemorySlot.Load(ctx, sessionID)
}
