package checkout

import (
	"context"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultProcessingDelay = 2 * time.Second

// Charge is what the payment step asks a processor to settle.
type Charge struct {
	SessionID string
	Amount    decimal.Decimal
	Currency  string
	Method    domain.PaymentMethod
}

type Receipt struct {
	Reference   string
	ProcessedAt time.Time
}

// Processor settles a charge. Implementations must return promptly with
// ctx.Err() once ctx is done.
type Processor interface {
	Process(ctx context.Context, charge Charge) (*Receipt, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx context.Context, charge Charge) (*Receipt, error)

func (f ProcessorFunc) Process(ctx context.Context, charge Charge) (*Receipt, error) {
	return f(ctx, charge)
}

// SimulatedProcessor waits for Delay and then approves every charge, unless
// Fail is set. No network call is made.
type SimulatedProcessor struct {
	Delay time.Duration
	Fail  error
}

func NewSimulatedProcessor(delay time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{Delay: delay}
}

func (p *SimulatedProcessor) Process(ctx context.Context, charge Charge) (*Receipt, error) {
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if p.Fail != nil {
		return nil, p.Fail
	}
	return &Receipt{
		Reference:   uuid.New().String(),
		ProcessedAt: time.Now(),
	}, nil
}
