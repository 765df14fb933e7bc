package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
)

// MemoryCache is used when no Redis address is configured; carts then live
// only as long as the process. Entries expire after the TTL like their Redis
// counterparts.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	carts map[string]memoryEntry
}

type memoryEntry struct {
	snapshot  domain.CartSnapshot
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:   ttl,
		now:   time.Now,
		carts: make(map[string]memoryEntry),
	}
}

func (m *MemoryCache) Get(_ context.Context, sessionID string) (*domain.CartSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.carts[sessionID]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return cloneSnapshot(e.snapshot), nil
}

// Set also drops expired entries so abandoned carts do not accumulate.
func (m *MemoryCache) Set(_ context.Context, sessionID string, snapshot *domain.CartSnapshot) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.carts {
		if !now.Before(e.expiresAt) {
			delete(m.carts, id)
		}
	}
	m.carts[sessionID] = memoryEntry{
		snapshot:  *cloneSnapshot(*snapshot),
		expiresAt: now.Add(m.ttl),
	}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.carts)
}

func cloneSnapshot(s domain.CartSnapshot) *domain.CartSnapshot {
	out := s
	out.Items = make([]domain.LineItem, len(s.Items))
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	return &out
}
