package service

import (
	"context"
	"fmt"

	"ecofinds/internal/domain"
	"ecofinds/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for cart business logic. Every
// operation returns the resulting cart with products joined for display.
type CartService interface {
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]*domain.CartItem, error)
	GetCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error)
	DecreaseItem(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddToCart increments an existing line or appends a new one. The product
// must still exist; a vanished product surfaces as ErrProductNotFound.
func (s *cartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]*domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}

	if err := s.cartRepo.AddItem(ctx, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

// RemoveFromCart drops the whole line. Removing a line that is not there
// is not an error.
func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// DecreaseItem lowers a line's quantity by one; a line at quantity one is
// removed rather than kept at zero.
func (s *cartService) DecreaseItem(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error) {
	item, err := s.cartRepo.FindItem(ctx, userID, productID)
	if err != nil {
		if err == repository.ErrCartItemNotFound {
			return s.GetCart(ctx, userID)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	if item.Quantity <= 1 {
		if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
	} else {
		if err := s.cartRepo.SetQuantity(ctx, userID, productID, item.Quantity-1); err != nil {
			return nil, fmt.Errorf("failed to decrease cart item: %w", err)
		}
	}

	return s.GetCart(ctx, userID)
}
