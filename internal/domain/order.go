package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecordVersion tags persisted records so the confirmation view can
// refuse a record written with a different schema.
const OrderRecordVersion = 1

type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

func (t OrderType) RequiresAddress() bool {
	return t == OrderTypeDelivery
}

// ReadyWindow is the estimate shown on the confirmation page.
func (t OrderType) ReadyWindow() ReadyWindow {
	if t == OrderTypeDelivery {
		return ReadyWindow{MinMinutes: 30, MaxMinutes: 45}
	}
	return ReadyWindow{MinMinutes: 15, MaxMinutes: 20}
}

type PaymentMethod string

const (
	PaymentCard      PaymentMethod = "card"
	PaymentApplePay  PaymentMethod = "apple-pay"
	PaymentGooglePay PaymentMethod = "google-pay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentApplePay, PaymentGooglePay:
		return true
	}
	return false
}

type ContactDetails struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// MissingFields lists the mandatory fields left blank. Delivery orders also
// need the street address block; pickup orders do not.
func (c ContactDetails) MissingFields(orderType OrderType) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("first_name", c.FirstName)
	check("last_name", c.LastName)
	check("email", c.Email)
	check("phone", c.Phone)
	if orderType.RequiresAddress() {
		check("address", c.Address)
		check("city", c.City)
		check("state", c.State)
		check("postal_code", c.PostalCode)
	}
	return missing
}

// PaymentDetails is collected at the payment step. Card fields are only
// checked for presence; nothing is sent to a payment network.
type PaymentDetails struct {
	Method     PaymentMethod `json:"method"`
	CardNumber string        `json:"card_number,omitempty"`
	CardName   string        `json:"card_name,omitempty"`
	Expiry     string        `json:"expiry,omitempty"`
	CVV        string        `json:"cvv,omitempty"`
}

func (p PaymentDetails) MissingFields() []string {
	var missing []string
	if !p.Method.Valid() {
		missing = append(missing, "method")
		return missing
	}
	if p.Method != PaymentCard {
		return nil
	}
	for _, f := range []struct{ name, value string }{
		{"card_number", p.CardNumber},
		{"card_name", p.CardName},
		{"expiry", p.Expiry},
		{"cvv", p.CVV},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// CardLast4 returns the last four digits of the card number, or "".
func (p PaymentDetails) CardLast4() string {
	if p.Method != PaymentCard {
		return ""
	}
	digits := make([]rune, 0, len(p.CardNumber))
	for _, r := range p.CardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}

type ReadyWindow struct {
	MinMinutes int `json:"min_minutes"`
	MaxMinutes int `json:"max_minutes"`
}

// OrderRecord is produced once per successful checkout and never mutated
// afterwards. Card data other than the last four digits is not kept.
type OrderRecord struct {
	SchemaVersion int             `json:"schema_version"`
	OrderNumber   string          `json:"order_number"`
	SessionID     string          `json:"session_id"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	OrderType     OrderType       `json:"order_type"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CardLast4     string          `json:"card_last4,omitempty"`
	Customer      ContactDetails  `json:"customer"`
	ReadyWindow   ReadyWindow     `json:"ready_window"`
	CreatedAt     time.Time       `json:"created_at"`
}
