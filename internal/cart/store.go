package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("item not found in cart")

// MinQuantity is the floor UpdateQuantity clamps to. Deleting a line item
// always goes through RemoveItem.
const MinQuantity = 1

// Store holds the line items of one shopping session in insertion order.
type Store struct {
	mu        sync.RWMutex
	items     []domain.LineItem
	observers []func([]domain.LineItem)
	now       func() time.Time

	// notifyMu orders observer calls; the snapshot is taken under it so the
	// last observer call always sees the latest items.
	notifyMu sync.Mutex
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewStoreFrom restores a store from previously persisted items.
func NewStoreFrom(items []domain.LineItem) *Store {
	s := NewStore()
	for _, item := range items {
		s.items = append(s.items, item.Clone())
	}
	return s
}

// OnChange registers fn to run after every mutation with a copy of the items.
func (s *Store) OnChange(fn func([]domain.LineItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// AddItem appends a fully resolved line item. The caller is trusted: the
// customization is not checked against the product. An empty ID gets a fresh
// one, so the same product added twice yields two line items.
func (s *Store) AddItem(item domain.LineItem) domain.LineItem {
	item = item.Clone()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Quantity < MinQuantity {
		item.Quantity = MinQuantity
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now()
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.notify()
	return item.Clone()
}

// RemoveItem deletes the line item with id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.notify()
}

// UpdateQuantity sets the quantity of an existing line item, clamping values
// below MinQuantity.
func (s *Store) UpdateQuantity(id string, quantity int) (domain.LineItem, error) {
	if quantity < MinQuantity {
		quantity = MinQuantity
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.LineItem{}, ErrItemNotFound
	}
	s.items[idx].Quantity = quantity
	updated := s.items[idx].Clone()
	s.mu.Unlock()

	s.notify()
	return updated, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) Item(id string) (domain.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.LineItem{}, false
	}
	return s.items[idx].Clone(), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Subtotal is recomputed from the items on every call.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Subtotal(s.items)
}

func (s *Store) Totals(orderType domain.OrderType, rates pricing.Rates) pricing.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.Compute(pricing.Subtotal(s.items), len(s.items), orderType, rates)
}

// indexOf expects s.mu to be held.
func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot expects s.mu to be held.
func (s *Store) snapshot() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	observers := s.observers
	items := s.snapshot()
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(items)
	}
}
