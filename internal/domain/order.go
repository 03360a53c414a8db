package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the persisted, wire-visible order state. Unrecognized
// provider statuses are stored verbatim, so values outside the constants
// below are possible.
type OrderStatus string

const (
	OrderPending       OrderStatus = "Pending"
	OrderCompleted     OrderStatus = "Completed"
	OrderPartiallyPaid OrderStatus = "PartiallyPaid"
	OrderConfirming    OrderStatus = "Confirming"
	OrderWaiting       OrderStatus = "Waiting"
	OrderExpired       OrderStatus = "Expired"
	OrderFailed        OrderStatus = "Failed"
	OrderRefunded      OrderStatus = "Refunded"
)

// StatusFromProvider maps the payment provider's status vocabulary onto the
// internal one, case-insensitively. Unknown statuses pass through raw.
func StatusFromProvider(raw string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finished", "confirmed":
		return OrderCompleted
	case "partially_paid":
		return OrderPartiallyPaid
	case "confirming":
		return OrderConfirming
	case "waiting":
		return OrderWaiting
	case "expired":
		return OrderExpired
	case "failed":
		return OrderFailed
	case "refunded":
		return OrderRefunded
	default:
		return OrderStatus(raw)
	}
}

// Order is created at checkout in status Pending and mutated afterwards only
// by webhook reconciliation or an admin override. Total is the sum of item
// price snapshots at creation time and never changes.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"-"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	PaymentID       string          `json:"paymentId,omitempty"`
	PaymentURL      string          `json:"paymentUrl,omitempty"`
	PaymentCurrency string          `json:"paymentCurrency,omitempty"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem carries the product price frozen at purchase time. ProductID is a
// weak reference; the product may be deleted later.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
