package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecofinds/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository defines the interface for cart line item data access
type CartRepository interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	FindItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// ListItems returns the cart in insertion order with products joined in.
// Deleted products cascade out of cart_items, so every line has a product.
func (r *cartRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	query := fmt.Sprintf(`
		SELECT c.user_id, c.product_id, c.quantity, c.added_at, %s
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE c.user_id = $1
		ORDER BY c.added_at ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	products := []*domain.Product{}
	for rows.Next() {
		item := &domain.CartItem{}
		product, err := scanCartRow(rows, item)
		if err != nil {
			return nil, err
		}
		item.Product = product
		items = append(items, item)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	if err := attachAssets(ctx, r.db, products); err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem returns a single cart line without joining the product
func (r *cartRepository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT user_id, product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.AddedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// AddItem appends a new line or increments the quantity of an existing one
func (r *cartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.db.ExecContext(ctx, query, userID, productID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing line
func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE user_id = $1 AND product_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to set cart item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveItem deletes a line entirely. Removing an absent line is a no-op.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func scanCartRow(rows *sql.Rows, item *domain.CartItem) (*domain.Product, error) {
	product := &domain.Product{Images: []string{}, Tags: []string{}}
	seller := &domain.SellerProfile{}
	var details []byte

	err := rows.Scan(
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.AddedAt,
		&product.ID,
		&product.SellerID,
		&product.Title,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.Quantity,
		&product.Condition,
		&product.WorkingCondition,
		&details,
		&product.CreatedAt,
		&product.UpdatedAt,
		&seller.Name,
		&seller.Avatar,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart item: %w", err)
	}

	if len(details) > 0 {
		if err := unmarshalDetails(details, &product.Details); err != nil {
			return nil, err
		}
	}

	seller.ID = product.SellerID
	product.Seller = seller
	return product, nil
}
