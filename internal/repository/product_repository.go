package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecofinds/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter narrows a listing query. Zero values mean "no filter".
type ProductFilter struct {
	Category      string
	SellerID      *uuid.UUID
	ExcludeSeller *uuid.UUID
	Search        string
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByListingKey(ctx context.Context, sellerID uuid.UUID, title, category string, price float64, condition domain.Condition) (*domain.Product, error)
	MergeListing(ctx context.Context, id uuid.UUID, addQuantity int, images, tags []string) error
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.seller_id, p.title, p.description, p.category, p.price,
	p.quantity, p.condition, p.working_condition, p.details,
	p.created_at, p.updated_at, u.name, u.avatar`

// Create inserts a new product row together with its image and tag sets
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	details, err := json.Marshal(product.Details)
	if err != nil {
		return fmt.Errorf("failed to encode product details: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, seller_id, title, description, category, price,
			quantity, condition, working_condition, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.SellerID,
		product.Title,
		product.Description,
		product.Category,
		product.Price,
		product.Quantity,
		product.Condition,
		product.WorkingCondition,
		details,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertAssets(ctx, tx, product.ID, product.Images, product.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product create: %w", err)
	}
	return nil
}

// Update rewrites the product row and replaces its image and tag sets
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	details, err := json.Marshal(product.Details)
	if err != nil {
		return fmt.Errorf("failed to encode product details: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET title = $2, description = $3, category = $4, price = $5,
		    quantity = $6, condition = $7, working_condition = $8,
		    details = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Category,
		product.Price,
		product.Quantity,
		product.Condition,
		product.WorkingCondition,
		details,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear product tags: %w", err)
	}
	if err := insertAssets(ctx, tx, product.ID, product.Images, product.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}
	return nil
}

// MergeListing folds a duplicate publish into an existing row: the quantity
// grows by addQuantity and the image/tag sets are unioned (ON CONFLICT keeps
// them duplicate-free).
func (r *productRepository) MergeListing(ctx context.Context, id uuid.UUID, addQuantity int, images, tags []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, id, addQuantity)
	if err != nil {
		return fmt.Errorf("failed to merge listing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := insertAssets(ctx, tx, id, images, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing merge: %w", err)
	}
	return nil
}

// Delete removes a product. Cart lines cascade away; historical order items
// keep their snapshot and lose only the product reference.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its seller projection, images and tags
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.id = $1
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	if err := attachAssets(ctx, r.db, products); err != nil {
		return nil, err
	}
	return products[0], nil
}

// FindByListingKey looks up a product by its duplicate key
// (seller, title, category, price, condition).
func (r *productRepository) FindByListingKey(ctx context.Context, sellerID uuid.UUID, title, category string, price float64, condition domain.Condition) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.seller_id = $1 AND p.title = $2 AND p.category = $3
		  AND p.price = $4 AND p.condition = $5
		LIMIT 1
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, sellerID, title, category, price, condition)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by listing key: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	if err := attachAssets(ctx, r.db, products); err != nil {
		return nil, err
	}
	return products[0], nil
}

// List retrieves products matching the filter, newest first
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}
	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("p.seller_id = $%d", argIndex))
		args = append(args, *filter.SellerID)
		argIndex++
	}
	if filter.ExcludeSeller != nil {
		conditions = append(conditions, fmt.Sprintf("p.seller_id <> $%d", argIndex))
		args = append(args, *filter.ExcludeSeller)
		argIndex++
	}
	if strings.TrimSpace(filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf(
			"to_tsvector('english', p.title || ' ' || p.description || ' ' || p.working_condition) @@ websearch_to_tsquery('english', $%d)", argIndex))
		args = append(args, filter.Search)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN users u ON u.id = p.seller_id
		%s
		ORDER BY p.created_at DESC
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	if err := attachAssets(ctx, r.db, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories returns the distinct non-empty categories in use
func (r *productRepository) ListCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE category <> ''
		ORDER BY category ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// scanProducts reads product rows that were selected with productColumns
func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{Images: []string{}, Tags: []string{}}
		seller := &domain.SellerProfile{}
		var details []byte

		err := rows.Scan(
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
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &product.Details); err != nil {
				return nil, fmt.Errorf("failed to decode product details: %w", err)
			}
		}

		seller.ID = product.SellerID
		product.Seller = seller
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// attachAssets loads the image and tag sets for a batch of products
func attachAssets(ctx context.Context, q queryer, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := q.QueryContext(ctx, `SELECT product_id, url FROM product_images WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return fmt.Errorf("failed to scan product image: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Images = append(p.Images, url)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product images: %w", err)
	}

	tagRows, err := q.QueryContext(ctx, `SELECT product_id, tag FROM product_tags WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load product tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var productID uuid.UUID
		var tag string
		if err := tagRows.Scan(&productID, &tag); err != nil {
			return fmt.Errorf("failed to scan product tag: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating product tags: %w", err)
	}

	return nil
}

// insertAssets writes image and tag rows, skipping entries already present
func insertAssets(ctx context.Context, q queryer, productID uuid.UUID, images, tags []string) error {
	for _, url := range images {
		if url == "" {
			continue
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO product_images (product_id, url) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID, url)
		if err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}

	for _, tag := range tags {
		if tag == "" {
			continue
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO product_tags (product_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert product tag: %w", err)
		}
	}

	return nil
}
