package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/shopspring/decimal"
)

// MockRecorder implements OrderRecorder for testing
type MockRecorder struct {
	mu      sync.Mutex
	Records []*domain.OrderRecord
	Err     error
}

func (m *MockRecorder) Record(_ context.Context, record *domain.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}

// MockCartProvider implements CartProvider for testing
type MockCartProvider struct {
	mu     sync.Mutex
	stores map[string]*cart.Store
}

func NewMockCartProvider() *MockCartProvider {
	return &MockCartProvider{stores: make(map[string]*cart.Store)}
}

func (m *MockCartProvider) Store(_ context.Context, sessionID string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[sessionID]
	if !ok {
		s = cart.NewStore()
		m.stores[sessionID] = s
	}
	return s
}

// evict simulates the cart registry dropping a store and restoring a copy.
func (m *MockCartProvider) evict(sessionID string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	restored := cart.NewStoreFrom(m.stores[sessionID].Items())
	m.stores[sessionID] = restored
	return restored
}

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func approveAll() Processor {
	return ProcessorFunc(func(_ context.Context, _ Charge) (*Receipt, error) {
		return &Receipt{Reference: "ref-1", ProcessedAt: fixedNow}, nil
	})
}

func testDeps(proc Processor, rec OrderRecorder) Dependencies {
	return Dependencies{
		Rates:          pricing.DefaultRates(),
		Processor:      proc,
		Recorder:       rec,
		NewOrderNumber: func() string { return "ABCD1234" },
		Now:            func() time.Time { return fixedNow },
	}
}

func addProduct(s *cart.Store, id, price string, qty int) domain.LineItem {
	return s.AddItem(domain.LineItem{
		Product:   domain.ProductRef{ID: id, Name: "product " + id, BasePrice: decimal.RequireFromString(price)},
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	})
}

func pickupContact() domain.ContactDetails {
	return domain.ContactDetails{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
	}
}

func deliveryContact() domain.ContactDetails {
	c := pickupContact()
	c.Address = "12 Bean Street"
	c.City = "Portland"
	c.State = "OR"
	c.PostalCode = "97201"
	return c
}

func cardPayment() domain.PaymentDetails {
	return domain.PaymentDetails{
		Method:     domain.PaymentCard,
		CardNumber: "4242 4242 4242 4242",
		CardName:   "Ada Lovelace",
		Expiry:     "12/30",
		CVV:        "123",
	}
}
