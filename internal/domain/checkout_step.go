package domain

type CheckoutStep string

const (
	StepOrderType      CheckoutStep = "order-type"
	StepContactDetails CheckoutStep = "contact-details"
	StepPayment        CheckoutStep = "payment"
	StepConfirmation   CheckoutStep = "confirmation"
)

func (s CheckoutStep) IsTerminal() bool {
	return s == StepConfirmation
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}

var allowedTransitions = map[CheckoutStep][]CheckoutStep{
	StepOrderType:      {StepContactDetails},
	StepContactDetails: {StepPayment, StepOrderType},
	StepPayment:        {StepConfirmation, StepContactDetails},
}

func CanTransitionTo(from, to CheckoutStep) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
