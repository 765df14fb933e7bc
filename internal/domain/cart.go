package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type ProductRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	ImageURL  string          `json:"image_url"`
	Category  string          `json:"category"`
}

// Customization is empty for products that cannot be customized.
type Customization struct {
	Size   Size     `json:"size,omitempty"`
	Milk   string   `json:"milk,omitempty"`
	Sugar  int      `json:"sugar"`
	Extras []string `json:"extras,omitempty"`
}

// Normalized returns a copy with extras de-duplicated and sorted, so two
// selections of the same extras compare equal regardless of click order.
func (c Customization) Normalized() Customization {
	out := c
	if len(c.Extras) == 0 {
		out.Extras = nil
		return out
	}
	out.Extras = slices.Clone(c.Extras)
	slices.Sort(out.Extras)
	out.Extras = slices.Compact(out.Extras)
	return out
}

type LineItem struct {
	ID            string          `json:"id"`
	Product       ProductRef      `json:"product"`
	Quantity      int             `json:"quantity"`
	Customization Customization   `json:"customization"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	AddedAt       time.Time       `json:"added_at"`
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone copies the item so callers never share the extras slice with the cart.
func (i LineItem) Clone() LineItem {
	out := i
	out.Customization.Extras = slices.Clone(i.Customization.Extras)
	return out
}

// CartSnapshot is what gets cached when a session's cart is persisted.
type CartSnapshot struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
