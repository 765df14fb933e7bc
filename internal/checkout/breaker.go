package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

// BreakerProcessor stops calling the wrapped processor after MaxFailures
// consecutive failures and reports ErrPaymentUnavailable until OpenTimeout
// has passed.
type BreakerProcessor struct {
	next Processor
	cb   *gobreaker.CircuitBreaker[*Receipt]
}

func NewBreakerProcessor(next Processor, settings BreakerSettings, log *zap.Logger) *BreakerProcessor {
	cb := gobreaker.NewCircuitBreaker[*Receipt](gobreaker.Settings{
		Name:        "payment",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		// an abandoned checkout says nothing about the processor's health
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerProcessor{next: next, cb: cb}
}

func (b *BreakerProcessor) Process(ctx context.Context, charge Charge) (*Receipt, error) {
	receipt, err := b.cb.Execute(func() (*Receipt, error) {
		return b.next.Process(ctx, charge)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	return receipt, err
}

func (b *BreakerProcessor) State() gobreaker.State {
	return b.cb.State()
}
