package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrMissingFields    = errors.New("title, description, category and price are required")
	ErrInvalidCondition = errors.New("unknown product condition")
	ErrNegativePrice    = errors.New("price cannot be negative")
)

// ListingInput carries the fields of a publish request. A single Image and
// an Images list are both accepted; they are normalized into one set.
// Price is a pointer so an absent price and a free (zero) price stay
// distinguishable.
type ListingInput struct {
	Title            string
	Description      string
	Category         string
	Price            *float64
	Quantity         int
	Condition        domain.Condition
	WorkingCondition string
	Image            string
	Images           []string
	Tags             []string
	Details          domain.ProductDetails
}

// ListingPatch carries the optional mutable fields of an update request.
// Nil fields are left untouched.
type ListingPatch struct {
	Title            *string
	Description      *string
	Category         *string
	Price            *float64
	Quantity         *int
	Condition        *domain.Condition
	WorkingCondition *string
	Image            *string
	Images           *[]string
	Tags             *[]string
	Details          *domain.ProductDetails
}

// CatalogService defines the interface for listing business logic
type CatalogService interface {
	// Publish is an explicit upsert: a listing matching an existing
	// (seller, title, category, price, condition) key merges into it,
	// anything else creates a new product. The bool result reports
	// whether a merge happened.
	Publish(ctx context.Context, sellerID uuid.UUID, input ListingInput) (*domain.Product, bool, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, id, requesterID uuid.UUID, patch ListingPatch) (*domain.Product, error)
	Delete(ctx context.Context, id, requesterID uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) Publish(ctx context.Context, sellerID uuid.UUID, input ListingInput) (*domain.Product, bool, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)
	if title == "" || description == "" || category == "" || input.Price == nil {
		return nil, false, ErrMissingFields
	}
	price := *input.Price
	if price < 0 {
		return nil, false, ErrNegativePrice
	}

	condition := input.Condition
	if condition == "" {
		condition = domain.ConditionGood
	}
	if !condition.Valid() {
		return nil, false, ErrInvalidCondition
	}

	// Requested quantity defaults to one unit and never goes negative.
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	} else if quantity < 0 {
		quantity = 0
	}

	images := normalizeImages(input.Image, input.Images)
	tags := dedupe(input.Tags)

	existing, err := s.productRepo.FindByListingKey(ctx, sellerID, title, category, price, condition)
	if err == nil {
		if err := s.productRepo.MergeListing(ctx, existing.ID, quantity, images, tags); err != nil {
			return nil, false, fmt.Errorf("failed to merge listing: %w", err)
		}
		merged, err := s.productRepo.FindByID(ctx, existing.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload merged listing: %w", err)
		}
		return merged, true, nil
	}
	if err != repository.ErrProductNotFound {
		return nil, false, fmt.Errorf("failed to check for duplicate listing: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:               uuid.New(),
		SellerID:         sellerID,
		Title:            title,
		Description:      description,
		Category:         category,
		Price:            price,
		Quantity:         quantity,
		Condition:        condition,
		WorkingCondition: strings.TrimSpace(input.WorkingCondition),
		Images:           images,
		Tags:             tags,
		Details:          input.Details,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, false, fmt.Errorf("failed to create listing: %w", err)
	}

	created, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload created listing: %w", err)
	}
	return created, false, nil
}

func (s *catalogService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, id, requesterID uuid.UUID, patch ListingPatch) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if product.SellerID != requesterID {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		product.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		product.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, ErrNegativePrice
		}
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
		if product.Quantity < 0 {
			product.Quantity = 0
		}
	}
	if patch.Condition != nil {
		if !patch.Condition.Valid() {
			return nil, ErrInvalidCondition
		}
		product.Condition = *patch.Condition
	}
	if patch.WorkingCondition != nil {
		product.WorkingCondition = strings.TrimSpace(*patch.WorkingCondition)
	}
	if patch.Images != nil {
		product.Images = dedupe(*patch.Images)
	}
	if patch.Tags != nil {
		product.Tags = dedupe(*patch.Tags)
	}
	if patch.Details != nil {
		product.Details = *patch.Details
	}

	// Legacy single-image field: backfill the list when it ended up empty.
	if len(product.Images) == 0 && patch.Image != nil && *patch.Image != "" {
		product.Images = []string{*patch.Image}
	}

	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload updated product: %w", err)
	}
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return err
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	if product.SellerID != requesterID {
		return ErrForbidden
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// normalizeImages folds the legacy single image field and the image list
// into one duplicate-free list.
func normalizeImages(image string, images []string) []string {
	all := images
	if image != "" {
		all = append([]string{image}, images...)
	}
	return dedupe(all)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
