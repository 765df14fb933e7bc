package cache

import (
	"context"
	"errors"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
)

// CartCache persists a session's cart between process restarts.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, sessionID string, snapshot *domain.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
