package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition  = errors.New("illegal transition of checkout step")
	ErrCheckoutInProgress = errors.New("payment is already being processed")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrPaymentUnavailable = errors.New("payment processor unavailable")
	ErrNoOrder            = errors.New("no order has been placed")
)

// ValidationError blocks a step transition because mandatory fields are empty.
type ValidationError struct {
	Step   domain.CheckoutStep
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields at %s: %s", e.Step, strings.Join(e.Fields, ", "))
}
