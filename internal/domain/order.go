package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"

	PaymentMethodRazorpay = "razorpay"
	PaymentMethodPayLater = "pay_later"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// OrderItem is an immutable snapshot of a cart line at checkout time.
// PriceAtPurchase is frozen; later catalog price edits never touch it.
// ProductID is nil once the underlying product has been deleted.
type OrderItem struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OrderID         uuid.UUID  `json:"-" db:"order_id"`
	ProductID       *uuid.UUID `json:"product_id,omitempty" db:"product_id"`
	Quantity        int        `json:"quantity" db:"quantity"`
	PriceAtPurchase float64    `json:"price_at_purchase" db:"price_at_purchase"`
	Product         *Product   `json:"product,omitempty"`
}

// Order is the record produced by checkout. It is never mutated afterwards
// apart from the completed/cancelled status transition.
type Order struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	UserID        uuid.UUID   `json:"user_id" db:"user_id"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total" db:"total"`
	Status        string      `json:"status" db:"status"`
	PaymentMethod string      `json:"payment_method" db:"payment_method"`
	PaymentStatus string      `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}
