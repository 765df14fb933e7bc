package cart

import (
	"context"
	"sync"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/cache"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
)

// MockCache implements cache.CartCache for testing
type MockCache struct {
	mu        sync.Mutex
	Snapshots map[string]*domain.CartSnapshot
	GetErr    error
	SetErr    error
	DeleteErr error
	GetCalls  int
	SetCalls  int
	Deleted   []string
}

func NewMockCache() *MockCache {
	return &MockCache{Snapshots: make(map[string]*domain.CartSnapshot)}
}

func (m *MockCache) Get(_ context.Context, sessionID string) (*domain.CartSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s, ok := m.Snapshots[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return s, nil
}

func (m *MockCache) Set(_ context.Context, sessionID string, snapshot *domain.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Snapshots[sessionID] = snapshot
	return nil
}

func (m *MockCache) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, sessionID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Snapshots, sessionID)
	return nil
}

func (m *MockCache) snapshot(sessionID string) (*domain.CartSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Snapshots[sessionID]
	return s, ok
}
