package domain

import (
	"time"

	"github.com/google/uuid"
)

// Condition describes the wear state of a second-hand listing.
type Condition string

const (
	ConditionNew         Condition = "New"
	ConditionLikeNew     Condition = "Like New"
	ConditionGood        Condition = "Good"
	ConditionUsed        Condition = "Used"
	ConditionHeavilyUsed Condition = "Heavily Used"
)

// Valid reports whether c is one of the known condition values.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionUsed, ConditionHeavilyUsed:
		return true
	}
	return false
}

// ProductDetails holds the free-form attributes a seller may describe.
// Stored as a single jsonb column.
type ProductDetails struct {
	YearOfManufacture int    `json:"year_of_manufacture,omitempty"`
	Brand             string `json:"brand,omitempty"`
	Model             string `json:"model,omitempty"`
	Dimensions        string `json:"dimensions,omitempty"`
	Weight            string `json:"weight,omitempty"`
	Material          string `json:"material,omitempty"`
	Color             string `json:"color,omitempty"`
	OriginalPackaging bool   `json:"original_packaging,omitempty"`
	ManualIncluded    bool   `json:"manual_included,omitempty"`
}

// Product is a second-hand listing owned by a seller.
//
// The tuple (seller, title, category, price, condition) is the listing's
// natural duplicate key: publishing a matching listing merges into the
// existing row instead of inserting a new one.
type Product struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	SellerID         uuid.UUID      `json:"seller_id" db:"seller_id"`
	Title            string         `json:"title" db:"title"`
	Description      string         `json:"description" db:"description"`
	Category         string         `json:"category" db:"category"`
	Price            float64        `json:"price" db:"price"`
	Quantity         int            `json:"quantity" db:"quantity"`
	Condition        Condition      `json:"condition" db:"condition"`
	WorkingCondition string         `json:"working_condition,omitempty" db:"working_condition"`
	Images           []string       `json:"images"`
	Tags             []string       `json:"tags"`
	Details          ProductDetails `json:"details"`
	Seller           *SellerProfile `json:"seller,omitempty"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}
