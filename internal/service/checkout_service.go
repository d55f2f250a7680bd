package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// CheckoutService converts carts into immutable orders
type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*domain.Order, error)
	OrderHistory(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

type checkoutService struct {
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository) CheckoutService {
	return &checkoutService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// Checkout snapshots every cart line at its current product price, writes
// the order and clears the cart in one transaction. Product stock is not
// decremented; listing quantity and cart quantity are independent.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*domain.Order, error) {
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodRazorpay
	}
	if paymentMethod != domain.PaymentMethodRazorpay && paymentMethod != domain.PaymentMethodPayLater {
		return nil, ErrUnknownPaymentMethod
	}

	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        domain.OrderStatusCompleted,
		PaymentMethod: paymentMethod,
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     time.Now(),
	}
	if paymentMethod == domain.PaymentMethodPayLater {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	for _, item := range items {
		productID := item.ProductID
		snapshot := domain.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       &productID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Product.Price,
			Product:         item.Product,
		}
		order.Items = append(order.Items, snapshot)
		order.Total += snapshot.PriceAtPurchase * float64(snapshot.Quantity)
	}

	if err := s.orderRepo.CreateFromCheckout(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist checkout: %w", err)
	}

	return order, nil
}

// OrderHistory returns the user's orders, newest first
func (s *checkoutService) OrderHistory(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return orders, nil
}
