package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a user's cart: a weak reference to a product
// with a quantity. Lines keep insertion order via AddedAt.
type CartItem struct {
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
	Product   *Product  `json:"product,omitempty"`
}
