package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
	Category     string          `json:"category"`
	Featured     bool            `json:"featured"`
	Customizable bool            `json:"customizable"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Ref captures the product fields a line item keeps after it leaves the catalog.
func (p *Product) Ref() ProductRef {
	return ProductRef{
		ID:        p.ID,
		Name:      p.Name,
		BasePrice: p.Price,
		ImageURL:  p.ImageURL,
		Category:  p.Category,
	}
}
