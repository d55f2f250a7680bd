package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"ecofinds/internal/domain"
	"ecofinds/internal/middleware"
	"ecofinds/internal/repository"
	"ecofinds/internal/service"

	"github.com/google/uuid"
)

// Function-field stubs for the service interfaces. Unset fields fail the
// test if the handler reaches them.

type stubAuthService struct {
	registerFn      func(ctx context.Context, name, email, password, avatar string) (*domain.User, string, error)
	loginFn         func(ctx context.Context, email, password string) (*domain.User, string, error)
	resolveFn       func(ctx context.Context, token string) (*domain.User, error)
	getUserFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	updateProfileFn func(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch service.ProfilePatch) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password, avatar string) (*domain.User, string, error) {
	return s.registerFn(ctx, name, email, password, avatar)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	if s.resolveFn == nil {
		return nil, errors.New("unexpected ResolveSession call")
	}
	return s.resolveFn(ctx, token)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch service.ProfilePatch) (*domain.User, error) {
	return s.updateProfileFn(ctx, targetID, actorID, actorRole, patch)
}

type stubCatalogService struct {
	publishFn    func(ctx context.Context, sellerID uuid.UUID, input service.ListingInput) (*domain.Product, bool, error)
	listFn       func(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	getFn        func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	updateFn     func(ctx context.Context, id, requesterID uuid.UUID, patch service.ListingPatch) (*domain.Product, error)
	deleteFn     func(ctx context.Context, id, requesterID uuid.UUID) error
	categoriesFn func(ctx context.Context) ([]string, error)
}

func (s *stubCatalogService) Publish(ctx context.Context, sellerID uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
	return s.publishFn(ctx, sellerID, input)
}

func (s *stubCatalogService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Update(ctx context.Context, id, requesterID uuid.UUID, patch service.ListingPatch) (*domain.Product, error) {
	return s.updateFn(ctx, id, requesterID, patch)
}

func (s *stubCatalogService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	return s.deleteFn(ctx, id, requesterID)
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.categoriesFn(ctx)
}

type stubCartService struct {
	addFn      func(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]*domain.CartItem, error)
	getFn      func(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	removeFn   func(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error)
	decreaseFn func(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error)
}

func (s *stubCartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]*domain.CartItem, error) {
	return s.addFn(ctx, userID, productID, quantity)
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return s.getFn(ctx, userID)
}

func (s *stubCartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error) {
	return s.removeFn(ctx, userID, productID)
}

func (s *stubCartService) DecreaseItem(ctx context.Context, userID, productID uuid.UUID) ([]*domain.CartItem, error) {
	return s.decreaseFn(ctx, userID, productID)
}

type stubCheckoutService struct {
	checkoutFn func(ctx context.Context, userID uuid.UUID, paymentMethod string) (*domain.Order, error)
	historyFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

func (s *stubCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*domain.Order, error) {
	return s.checkoutFn(ctx, userID, paymentMethod)
}

func (s *stubCheckoutService) OrderHistory(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.historyFn(ctx, userID)
}

// fakeSession injects an authenticated user straight into the request
// context, standing in for the real auth gate.
func fakeSession(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID.String())
			ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp middleware.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("error body is not an envelope: %v: %s", err, body)
	}
	return resp.Error.Code
}
