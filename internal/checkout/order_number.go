package checkout

import "math/rand/v2"

const (
	OrderNumberLength   = 8
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewOrderNumber returns a short token for the customer to quote at the
// counter. Collisions are possible and not checked here; the order
// repository rejects a duplicate.
func NewOrderNumber() string {
	b := make([]byte, OrderNumberLength)
	for i := range b {
		b[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	return string(b)
}
