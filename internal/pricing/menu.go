package pricing

import (
	"errors"
	"fmt"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownOption = errors.New("unknown customization option")
	ErrInvalidSugar  = errors.New("sugar level out of range")
)

const (
	MinSugar = 0
	MaxSugar = 5
)

type Option struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Detail   string          `json:"detail,omitempty"`
	Modifier decimal.Decimal `json:"modifier"`
}

// Menu lists the customization choices for drinks and what each adds to the
// base price.
type Menu struct {
	Sizes        []Option `json:"sizes"`
	Milks        []Option `json:"milks"`
	Extras       []Option `json:"extras"`
	MinSugar     int      `json:"min_sugar"`
	MaxSugar     int      `json:"max_sugar"`
	DefaultSize  string   `json:"default_size"`
	DefaultMilk  string   `json:"default_milk"`
	DefaultSugar int      `json:"default_sugar"`
}

func DefaultMenu() *Menu {
	d := decimal.RequireFromString
	return &Menu{
		Sizes: []Option{
			{ID: string(domain.SizeSmall), Name: "Small", Detail: "8oz", Modifier: d("0")},
			{ID: string(domain.SizeMedium), Name: "Medium", Detail: "12oz", Modifier: d("1")},
			{ID: string(domain.SizeLarge), Name: "Large", Detail: "16oz", Modifier: d("2")},
		},
		Milks: []Option{
			{ID: "whole", Name: "Whole Milk", Modifier: d("0")},
			{ID: "skim", Name: "Skim Milk", Modifier: d("0")},
			{ID: "almond", Name: "Almond Milk", Modifier: d("0.5")},
			{ID: "oat", Name: "Oat Milk", Modifier: d("0.5")},
			{ID: "soy", Name: "Soy Milk", Modifier: d("0.5")},
			{ID: "coconut", Name: "Coconut Milk", Modifier: d("0.5")},
		},
		Extras: []Option{
			{ID: "whipped", Name: "Whipped Cream", Modifier: d("0.75")},
			{ID: "caramel", Name: "Caramel Drizzle", Modifier: d("0.5")},
			{ID: "chocolate", Name: "Chocolate Syrup", Modifier: d("0.5")},
			{ID: "vanilla", Name: "Vanilla Shot", Modifier: d("1")},
			{ID: "espresso", Name: "Extra Espresso", Modifier: d("1.5")},
		},
		MinSugar:     MinSugar,
		MaxSugar:     MaxSugar,
		DefaultSize:  string(domain.SizeMedium),
		DefaultMilk:  "whole",
		DefaultSugar: 1,
	}
}

// Resolve fills in defaults, checks every option against the menu and returns
// the normalized customization together with the unit price it yields.
// Products that are not customizable always cost their base price.
func (m *Menu) Resolve(p *domain.Product, c domain.Customization) (domain.Customization, decimal.Decimal, error) {
	if !p.Customizable {
		return domain.Customization{}, p.Price, nil
	}

	c = c.Normalized()
	if c.Size == "" {
		c.Size = domain.Size(m.DefaultSize)
	}
	if c.Milk == "" {
		c.Milk = m.DefaultMilk
	}
	if c.Sugar < m.MinSugar || c.Sugar > m.MaxSugar {
		return domain.Customization{}, decimal.Zero, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidSugar, c.Sugar, m.MinSugar, m.MaxSugar)
	}

	price := p.Price
	size, err := find(m.Sizes, string(c.Size), "size")
	if err != nil {
		return domain.Customization{}, decimal.Zero, err
	}
	price = price.Add(size.Modifier)

	milk, err := find(m.Milks, c.Milk, "milk")
	if err != nil {
		return domain.Customization{}, decimal.Zero, err
	}
	price = price.Add(milk.Modifier)

	for _, id := range c.Extras {
		extra, err := find(m.Extras, id, "extra")
		if err != nil {
			return domain.Customization{}, decimal.Zero, err
		}
		price = price.Add(extra.Modifier)
	}

	return c, price, nil
}

func find(options []Option, id, kind string) (Option, error) {
	for _, o := range options {
		if o.ID == id {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %s %q", ErrUnknownOption, kind, id)
}
