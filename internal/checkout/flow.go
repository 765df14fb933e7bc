package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/pricing"
	"go.uber.org/zap"
)

// Cart is the part of a cart store the checkout reads and, on success, clears.
type Cart interface {
	Items() []domain.LineItem
	IsEmpty() bool
	Clear()
}

// OrderRecorder persists a completed order.
type OrderRecorder interface {
	Record(ctx context.Context, record *domain.OrderRecord) error
}

// Dependencies are shared by every flow a Service starts.
type Dependencies struct {
	Rates          pricing.Rates
	Processor      Processor
	Recorder       OrderRecorder
	NewOrderNumber func() string
	Now            func() time.Time
	Log            *zap.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.NewOrderNumber == nil {
		d.NewOrderNumber = NewOrderNumber
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// State is what the checkout pages render. Card data never appears here.
type State struct {
	Step        domain.CheckoutStep    `json:"step"`
	OrderType   domain.OrderType       `json:"order_type,omitempty"`
	Contact     *domain.ContactDetails `json:"contact,omitempty"`
	Totals      pricing.Totals         `json:"totals"`
	Processing  bool                   `json:"processing"`
	OrderNumber string                 `json:"order_number,omitempty"`
}

// Flow walks one session through order type, contact details and payment to
// confirmation.
type Flow struct {
	sessionID string
	cart      Cart
	deps      Dependencies

	mu         sync.Mutex
	step       domain.CheckoutStep
	orderType  domain.OrderType
	contact    *domain.ContactDetails
	processing bool
	order      *domain.OrderRecord
}

func NewFlow(sessionID string, cart Cart, deps Dependencies) *Flow {
	return &Flow{
		sessionID: sessionID,
		cart:      cart,
		deps:      deps.withDefaults(),
		step:      domain.StepOrderType,
	}
}

func (f *Flow) SelectOrderType(orderType domain.OrderType) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.transition(domain.StepContactDetails); err != nil {
		return err
	}
	if !orderType.Valid() {
		return &ValidationError{Step: domain.StepOrderType, Fields: []string{"order_type"}}
	}

	f.orderType = orderType
	f.step = domain.StepContactDetails
	return nil
}

func (f *Flow) SubmitContact(details domain.ContactDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.transition(domain.StepPayment); err != nil {
		return err
	}
	if missing := details.MissingFields(f.orderType); len(missing) > 0 {
		return &ValidationError{Step: domain.StepContactDetails, Fields: missing}
	}

	f.contact = &details
	f.step = domain.StepPayment
	return nil
}

// Back returns to the previous step, keeping whatever was entered there.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var prev domain.CheckoutStep
	switch f.step {
	case domain.StepPayment:
		prev = domain.StepContactDetails
	case domain.StepContactDetails:
		prev = domain.StepOrderType
	default:
		return fmt.Errorf("%w: cannot go back from %s", ErrIllegalTransition, f.step)
	}
	if err := f.transition(prev); err != nil {
		return err
	}
	f.step = prev
	return nil
}

// SubmitPayment charges the current cart and, on success, records the order,
// clears the cart and moves to confirmation. If ctx is done before the order
// is recorded nothing is written and the flow stays at the payment step.
func (f *Flow) SubmitPayment(ctx context.Context, details domain.PaymentDetails) (*domain.OrderRecord, error) {
	f.mu.Lock()
	if err := f.transition(domain.StepConfirmation); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if missing := details.MissingFields(); len(missing) > 0 {
		f.mu.Unlock()
		return nil, &ValidationError{Step: domain.StepPayment, Fields: missing}
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}
	orderType := f.orderType
	contact := *f.contact
	totals := pricing.Compute(pricing.Subtotal(items), len(items), orderType, f.deps.Rates)
	f.processing = true
	f.mu.Unlock()

	log := f.deps.Log.With(zap.String("session_id", f.sessionID))
	log.Info("processing payment",
		zap.String("method", string(details.Method)),
		zap.String("amount", totals.Total.String()))

	receipt, err := f.deps.Processor.Process(ctx, Charge{
		SessionID: f.sessionID,
		Amount:    totals.Total,
		Currency:  totals.Currency,
		Method:    details.Method,
	})
	if err == nil {
		// the processor may have ignored cancellation
		err = ctx.Err()
	}
	if err != nil {
		f.finishProcessing()
		switch {
		case ctx.Err() != nil:
			log.Info("checkout abandoned during payment", zap.Error(ctx.Err()))
			return nil, fmt.Errorf("checkout abandoned: %w", ctx.Err())
		case errors.Is(err, ErrPaymentUnavailable):
			log.Warn("payment processor unavailable", zap.Error(err))
			return nil, err
		default:
			log.Warn("payment declined", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
		}
	}

	record := f.buildRecord(items, totals, orderType, contact, details)
	if err := f.deps.Recorder.Record(ctx, record); err != nil {
		f.finishProcessing()
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	f.mu.Lock()
	f.cart.Clear()
	f.order = cloneRecord(record)
	f.step = domain.StepConfirmation
	f.processing = false
	f.mu.Unlock()

	log.Info("order placed",
		zap.String("order_number", record.OrderNumber),
		zap.String("payment_reference", receipt.Reference),
		zap.String("total", record.Total.String()))
	return cloneRecord(record), nil
}

func (f *Flow) buildRecord(
	items []domain.LineItem,
	totals pricing.Totals,
	orderType domain.OrderType,
	contact domain.ContactDetails,
	payment domain.PaymentDetails) *domain.OrderRecord {

	return &domain.OrderRecord{
		SchemaVersion: domain.OrderRecordVersion,
		OrderNumber:   f.deps.NewOrderNumber(),
		SessionID:     f.sessionID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
		Currency:      totals.Currency,
		OrderType:     orderType,
		PaymentMethod: payment.Method,
		CardLast4:     payment.CardLast4(),
		Customer:      contact,
		ReadyWindow:   orderType.ReadyWindow(),
		CreatedAt:     f.deps.Now(),
	}
}

func (f *Flow) finishProcessing() {
	f.mu.Lock()
	f.processing = false
	f.mu.Unlock()
}

// transition expects f.mu to be held.
func (f *Flow) transition(to domain.CheckoutStep) error {
	if f.processing {
		return ErrCheckoutInProgress
	}
	if !domain.CanTransitionTo(f.step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.step, to)
	}
	return nil
}

// Totals prices the live cart for the chosen order type. Once confirmed, the
// recorded totals are returned instead.
func (f *Flow) Totals() pricing.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalsLocked()
}

func (f *Flow) totalsLocked() pricing.Totals {
	if f.order != nil {
		return pricing.Totals{
			Subtotal:    f.order.Subtotal,
			Tax:         f.order.Tax,
			DeliveryFee: f.order.DeliveryFee,
			Total:       f.order.Total,
			Currency:    f.order.Currency,
			ItemCount:   len(f.order.Items),
		}
	}
	items := f.cart.Items()
	return pricing.Compute(pricing.Subtotal(items), len(items), f.orderType, f.deps.Rates)
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := State{
		Step:       f.step,
		OrderType:  f.orderType,
		Totals:     f.totalsLocked(),
		Processing: f.processing,
	}
	if f.contact != nil {
		c := *f.contact
		s.Contact = &c
	}
	if f.order != nil {
		s.OrderNumber = f.order.OrderNumber
	}
	return s
}

// Order returns the placed order once the flow has reached confirmation.
func (f *Flow) Order() (*domain.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != domain.StepConfirmation || f.order == nil {
		return nil, ErrNoOrder
	}
	return cloneRecord(f.order), nil
}

func cloneRecord(r *domain.OrderRecord) *domain.OrderRecord {
	out := *r
	out.Items = make([]domain.LineItem, len(r.Items))
	for i, item := range r.Items {
		out.Items[i] = item.Clone()
	}
	return &out
}

func (f *Flow) SessionID() string {
	return f.sessionID
}
