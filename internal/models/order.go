package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the ledger state of an order. Accepted and Rejected are
// terminal: the first transition wins and later transitions are no-ops.
type OrderStatus string

const (
	OrderNew      OrderStatus = "new"
	OrderAccepted OrderStatus = "accepted"
	OrderRejected OrderStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderAccepted || s == OrderRejected
}

// ParseOrderStatus maps a manager action to a target status.
func ParseOrderStatus(action string) (OrderStatus, error) {
	switch action {
	case "accept":
		return OrderAccepted, nil
	case "reject":
		return OrderRejected, nil
	}
	return "", errors.New("unknown action: " + action)
}

// Order is one row of the order ledger. IDs are assigned by the ledger and
// strictly increase.
type Order struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"user_id"`
	Payload   OrderPayload `json:"payload"`
	Status    OrderStatus  `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// OrderItem is one cart line. Flavor is optional.
type OrderItem struct {
	Name   string          `json:"name"`
	Flavor string          `json:"flavor,omitempty"`
	Qty    int             `json:"qty"`
	Price  decimal.Decimal `json:"price"`
}

// LineTotal returns price × qty.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// OrderPayload is the cart snapshot submitted by the customer. It is
// persisted verbatim: a read-back returns the same field values.
type OrderPayload struct {
	Items    []OrderItem     `json:"items"`
	Address  string          `json:"address"`
	District string          `json:"district"`
	Total    decimal.Decimal `json:"total"`
}

var (
	ErrEmptyCart      = errors.New("order has no items")
	ErrMissingAddress = errors.New("order has no delivery address")
	ErrInvalidTotal   = errors.New("order total must be positive")
	ErrInvalidItem    = errors.New("order item needs a name and qty >= 1")
)

// Validate rejects malformed payloads before anything is persisted.
func (p OrderPayload) Validate() error {
	if len(p.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range p.Items {
		if it.Name == "" || it.Qty < 1 {
			return ErrInvalidItem
		}
	}
	if p.Address == "" || p.District == "" {
		return ErrMissingAddress
	}
	if !p.Total.IsPositive() {
		return ErrInvalidTotal
	}
	return nil
}
