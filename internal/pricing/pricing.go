package pricing

import (
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Rates holds the pricing constants that used to be scattered across pages.
type Rates struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
	Currency    string
}

func DefaultRates() Rates {
	return Rates{
		TaxRate:     decimal.RequireFromString("0.08"),
		DeliveryFee: decimal.RequireFromString("5.99"),
		Currency:    "USD",
	}
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	ItemCount   int             `json:"item_count"`
}

// Compute derives tax, delivery fee and total from a subtotal. The delivery
// fee applies only to delivery orders with at least one line item. Values are
// exact; rounding for display is left to the caller.
func Compute(subtotal decimal.Decimal, itemCount int, orderType domain.OrderType, r Rates) Totals {
	tax := subtotal.Mul(r.TaxRate)
	fee := decimal.Zero
	if orderType == domain.OrderTypeDelivery && itemCount > 0 {
		fee = r.DeliveryFee
	}
	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
		Currency:    r.Currency,
		ItemCount:   itemCount,
	}
}

// Subtotal sums unit price times quantity over items.
func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
