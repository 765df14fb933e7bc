package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cache"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const persistTimeout = time.Second

// View is a read-only rendering of a cart for a given order type.
type View struct {
	SessionID string            `json:"session_id"`
	Items     []domain.LineItem `json:"items"`
	OrderType domain.OrderType  `json:"order_type"`
	Totals    pricing.Totals    `json:"totals"`
}

// Service owns one Store per session. Stores live in memory and are mirrored
// to the cache after each mutation; a cache failure never fails the cart
// operation itself. Stores idle for longer than the sweeper's timeout are
// dropped and restored from the cache on next use.
type Service struct {
	cache cache.CartCache
	rates pricing.Rates
	log   *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	stores map[string]*session
	sfg    singleflight.Group // one cache restore per session at a time
}

type session struct {
	store    *Store
	lastSeen time.Time
}

func NewCartService(c cache.CartCache, rates pricing.Rates, log *zap.Logger) *Service {
	return &Service{
		cache:  c,
		rates:  rates,
		log:    log,
		now:    time.Now,
		stores: make(map[string]*session),
	}
}

// Store returns the live store of a session, restoring it from the cache the
// first time the session is seen.
func (s *Service) Store(ctx context.Context, sessionID string) *Store {
	if store, ok := s.live(sessionID); ok {
		return store
	}

	v, _, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if existing, ok := s.live(sessionID); ok {
			return existing, nil
		}

		store := s.restore(ctx, sessionID)
		store.OnChange(func(items []domain.LineItem) {
			s.persist(sessionID, items)
		})

		s.mu.Lock()
		s.stores[sessionID] = &session{store: store, lastSeen: s.now()}
		s.mu.Unlock()
		return store, nil
	})

	return v.(*Store)
}

// live returns a store already held in memory and marks it as used.
func (s *Service) live(sessionID string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.stores[sessionID]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.store, true
}

// Sessions reports how many carts are held in memory.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Evict drops the stores not used within idle. A non-empty store is written
// to the cache first and kept if that write fails.
func (s *Service) Evict(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	candidates := make(map[string]*Store)
	for id, sess := range s.stores {
		if sess.lastSeen.Before(cutoff) {
			candidates[id] = sess.store
		}
	}
	s.mu.Unlock()

	evicted := 0
	for id, store := range candidates {
		if items := store.Items(); len(items) > 0 {
			if err := s.save(id, items); err != nil {
				s.log.Warn("keeping idle cart, cache write failed", zap.String("session_id", id), zap.Error(err))
				continue
			}
		}

		s.mu.Lock()
		// skip sessions touched while the snapshot was written
		if sess, ok := s.stores[id]; ok && sess.store == store && sess.lastSeen.Before(cutoff) {
			delete(s.stores, id)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

func (s *Service) restore(ctx context.Context, sessionID string) *Store {
	snapshot, err := s.cached(ctx, sessionID)
	if err != nil {
		return NewStore()
	}
	s.log.Debug("cart restored from cache", zap.String("session_id", sessionID), zap.Int("items", len(snapshot.Items)))
	return NewStoreFrom(snapshot.Items)
}

func (s *Service) cached(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	snapshot, err := s.cache.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cart cache get failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return snapshot, err
}

func (s *Service) persist(sessionID string, items []domain.LineItem) {
	if err := s.save(sessionID, items); err != nil {
		s.log.Warn("cart cache write failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *Service) save(sessionID string, items []domain.LineItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if len(items) == 0 {
		return s.cache.Delete(ctx, sessionID)
	}

	return s.cache.Set(ctx, sessionID, &domain.CartSnapshot{
		SessionID: sessionID,
		Items:     items,
		UpdatedAt: s.now(),
	})
}

func (s *Service) AddItem(ctx context.Context, sessionID string, item domain.LineItem) domain.LineItem {
	added := s.Store(ctx, sessionID).AddItem(item)
	s.log.Info("item added",
		zap.String("session_id", sessionID),
		zap.String("item_id", added.ID),
		zap.String("product_id", added.Product.ID),
		zap.Int("quantity", added.Quantity))
	return added
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (domain.LineItem, error) {
	updated, err := s.Store(ctx, sessionID).UpdateQuantity(itemID, quantity)
	if err != nil {
		return domain.LineItem{}, err
	}
	s.log.Info("quantity updated",
		zap.String("session_id", sessionID),
		zap.String("item_id", itemID),
		zap.Int("quantity", updated.Quantity))
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) {
	s.Store(ctx, sessionID).RemoveItem(itemID)
	s.log.Info("item removed", zap.String("session_id", sessionID), zap.String("item_id", itemID))
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) {
	s.Store(ctx, sessionID).Clear()
	s.log.Info("cart cleared", zap.String("session_id", sessionID))
}

func (s *Service) View(ctx context.Context, sessionID string, orderType domain.OrderType) View {
	if !orderType.Valid() {
		orderType = domain.OrderTypePickup
	}
	items := s.peek(ctx, sessionID)
	return View{
		SessionID: sessionID,
		Items:     items,
		OrderType: orderType,
		Totals:    pricing.Compute(pricing.Subtotal(items), len(items), orderType, s.rates),
	}
}

// peek reads a cart without creating a store for a session that has none.
func (s *Service) peek(ctx context.Context, sessionID string) []domain.LineItem {
	if store, ok := s.live(sessionID); ok {
		return store.Items()
	}
	snapshot, err := s.cached(ctx, sessionID)
	if err != nil || len(snapshot.Items) == 0 {
		return []domain.LineItem{}
	}
	return snapshot.Items
}

func (s *Service) Rates() pricing.Rates {
	return s.rates
}
