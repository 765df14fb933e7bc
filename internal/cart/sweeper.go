package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = time.Minute
	DefaultIdleTimeout   = 30 * time.Minute
)

// Evictor drops per-session state unused for longer than idle and reports
// how many sessions it dropped.
type Evictor interface {
	Evict(idle time.Duration) int
}

// Sweeper periodically evicts idle sessions from the in-memory registries.
type Sweeper struct {
	evictors []Evictor
	interval time.Duration
	idle     time.Duration
	log      *zap.Logger
}

func NewSweeper(interval, idle time.Duration, log *zap.Logger, evictors ...Evictor) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Sweeper{
		evictors: evictors,
		interval: interval,
		idle:     idle,
		log:      log,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("idle_timeout", s.idle))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *Sweeper) sweep() int {
	total := 0
	for _, e := range s.evictors {
		total += e.Evict(s.idle)
	}
	return total
}
