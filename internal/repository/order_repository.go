package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecofinds/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	CreateFromCheckout(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateFromCheckout persists the order with its line item snapshots and
// clears the buyer's cart in the same transaction, so a checkout either
// fully happens or leaves the cart untouched.
func (r *orderRepository) CreateFromCheckout(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, user_id, total, status, payment_method, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.Total,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	// The ordinal preserves the cart's line order in the snapshot.
	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, ordinal, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i := range order.Items {
		item := &order.Items[i]
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			i,
			item.Quantity,
			item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkout: %w", err)
	}
	return nil
}

// ListByUser returns the user's orders, newest first, each with its line
// item snapshots joined to the current product rows. A deleted product
// leaves the snapshot intact with a nil product.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total, status, payment_method, payment_status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	byID := map[uuid.UUID]*domain.Order{}
	orderIDs := []uuid.UUID{}
	for rows.Next() {
		order := &domain.Order{Items: []domain.OrderItem{}}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Total,
			&order.Status,
			&order.PaymentMethod,
			&order.PaymentStatus,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.loadItems(ctx, byID, orderIDs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus flips an order between completed and cancelled. The snapshot
// fields never change.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, byID map[uuid.UUID]*domain.Order, orderIDs []uuid.UUID) error {
	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price_at_purchase,
		       p.id, p.seller_id, p.title, p.description, p.category, p.price,
		       p.quantity, p.condition, p.working_condition, p.details,
		       p.created_at, p.updated_at, u.name, u.avatar
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		LEFT JOIN users u ON u.id = p.seller_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, orderIDs)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		item := domain.OrderItem{}
		var (
			productID      uuid.NullUUID
			pID, pSellerID uuid.NullUUID
			pTitle         sql.NullString
			pDescription   sql.NullString
			pCategory      sql.NullString
			pPrice         sql.NullFloat64
			pQuantity      sql.NullInt64
			pCondition     sql.NullString
			pWorkingCond   sql.NullString
			pDetails       []byte
			pCreated, pUpd sql.NullTime
			sName, sAvatar sql.NullString
		)

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&productID,
			&item.Quantity,
			&item.PriceAtPurchase,
			&pID,
			&pSellerID,
			&pTitle,
			&pDescription,
			&pCategory,
			&pPrice,
			&pQuantity,
			&pCondition,
			&pWorkingCond,
			&pDetails,
			&pCreated,
			&pUpd,
			&sName,
			&sAvatar,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if productID.Valid {
			id := productID.UUID
			item.ProductID = &id
		}
		if pID.Valid {
			product := &domain.Product{
				ID:               pID.UUID,
				SellerID:         pSellerID.UUID,
				Title:            pTitle.String,
				Description:      pDescription.String,
				Category:         pCategory.String,
				Price:            pPrice.Float64,
				Quantity:         int(pQuantity.Int64),
				Condition:        domain.Condition(pCondition.String),
				WorkingCondition: pWorkingCond.String,
				Images:           []string{},
				Tags:             []string{},
				CreatedAt:        pCreated.Time,
				UpdatedAt:        pUpd.Time,
				Seller: &domain.SellerProfile{
					ID:     pSellerID.UUID,
					Name:   sName.String,
					Avatar: sAvatar.String,
				},
			}
			if len(pDetails) > 0 {
				if err := unmarshalDetails(pDetails, &product.Details); err != nil {
					return err
				}
			}
			item.Product = product
			products = append(products, product)
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return attachAssets(ctx, r.db, products)
}
