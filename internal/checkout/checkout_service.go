package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cart"
	"go.uber.org/zap"
)

// CartProvider hands out the live cart store of a session.
type CartProvider interface {
	Store(ctx context.Context, sessionID string) *cart.Store
}

// Service keeps one checkout flow per session.
type Service struct {
	carts CartProvider
	deps  Dependencies

	mu    sync.Mutex
	flows map[string]*flowEntry
}

type flowEntry struct {
	flow     *Flow
	lastSeen time.Time
}

func NewCheckoutService(carts CartProvider, deps Dependencies) *Service {
	return &Service{
		carts: carts,
		deps:  deps.withDefaults(),
		flows: make(map[string]*flowEntry),
	}
}

// Flow returns the session's checkout. A session with an empty cart can only
// see a flow it has already completed; otherwise ErrEmptyCart tells the caller
// to send the user back to the catalog. A completed flow is replaced by a new
// one as soon as the cart has items again, and so is a flow whose cart store
// was evicted and restored since it started.
func (s *Service) Flow(ctx context.Context, sessionID string) (*Flow, error) {
	store := s.carts.Store(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	var f *Flow
	entry, ok := s.flows[sessionID]
	if ok {
		entry.lastSeen = s.deps.Now()
		f = entry.flow
		state := f.State()
		if state.Processing {
			return f, nil
		}
		switch {
		case state.Step.IsTerminal():
			if store.IsEmpty() {
				return f, nil
			}
			ok = false
		case f.cart != Cart(store):
			ok = false
		}
	}

	if store.IsEmpty() {
		delete(s.flows, sessionID)
		return nil, ErrEmptyCart
	}
	if ok {
		return f, nil
	}

	f = NewFlow(sessionID, store, s.deps)
	s.flows[sessionID] = &flowEntry{flow: f, lastSeen: s.deps.Now()}
	s.deps.Log.Debug("checkout started", zap.String("session_id", sessionID))
	return f, nil
}

// Reset drops the session's flow, e.g. when the user leaves checkout.
func (s *Service) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, sessionID)
}

// Evict drops flows not used within idle. A flow still processing a payment
// is kept.
func (s *Service) Evict(idle time.Duration) int {
	cutoff := s.deps.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.flows {
		if entry.lastSeen.Before(cutoff) && !entry.flow.State().Processing {
			delete(s.flows, id)
			evicted++
		}
	}
	return evicted
}

// Sessions reports how many flows are held in memory.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}
