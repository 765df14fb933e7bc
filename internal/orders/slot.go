package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultSlotTTL = 24 * time.Hour

// Slot keeps the most recent order of each session for the confirmation
// view. Save overwrites whatever the session had before.
type Slot interface {
	Save(ctx context.Context, record *domain.OrderRecord) error
	Load(ctx context.Context, sessionID string) (*domain.OrderRecord, error)
}

func slotKey(sessionID string) string {
	return fmt.Sprintf("last_order:%s", sessionID)
}

// decodeSlot rejects records written with another schema version.
func decodeSlot(data []byte) (*domain.OrderRecord, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("unmarshal last order failed: %w", err)
	}
	if probe.SchemaVersion != domain.OrderRecordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.SchemaVersion)
	}
	var record domain.OrderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal last order failed: %w", err)
	}
	return &record, nil
}

type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	return &RedisSlot{client: client, ttl: ttl}
}

func (s *RedisSlot) Save(ctx context.Context, record *domain.OrderRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal last order failed: %w", err)
	}
	if err := s.client.Set(ctx, slotKey(record.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisSlot) Load(ctx context.Context, sessionID string) (*domain.OrderRecord, error) {
	data, err := s.client.Get(ctx, slotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decodeSlot(data)
}

// MemorySlot stores serialized records so that Load goes through the same
// version check as RedisSlot.
type MemorySlot struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{slots: make(map[string][]byte)}
}

func (s *MemorySlot) Save(_ context.Context, record *domain.OrderRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal last order failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slotKey(record.SessionID)] = data
	return nil
}

func (s *MemorySlot) Load(_ context.Context, sessionID string) (*domain.OrderRecord, error) {
	s.mu.RLock()
	data, ok := s.slots[slotKey(sessionID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	return decodeSlot(data)
}
