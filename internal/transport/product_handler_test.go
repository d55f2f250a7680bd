package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/middleware"
	"ecofinds/internal/repository"
	"ecofinds/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func productFixture(sellerID uuid.UUID) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       "Vintage Lamp",
		Description: "A lamp with character",
		Category:    "Home",
		Price:       19.5,
		Quantity:    1,
		Condition:   domain.ConditionGood,
		Images:      []string{"https://cdn.example.com/lamp.jpg"},
		Tags:        []string{"lamp"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func newProductRouter(svc service.CatalogService, sellerID uuid.UUID) chi.Router {
	router := chi.NewRouter()
	handler := NewProductHandler(svc, zap.NewNop())
	handler.RegisterRoutes(router, fakeSession(sellerID, "user"))
	return router
}

func TestPublish_NewListingAnswers201(t *testing.T) {
	sellerID := uuid.New()
	product := productFixture(sellerID)
	svc := &stubCatalogService{
		publishFn: func(ctx context.Context, gotSeller uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
			if gotSeller != sellerID {
				t.Fatalf("seller from context is %s, want %s", gotSeller, sellerID)
			}
			return product, false, nil
		},
	}
	router := newProductRouter(svc, sellerID)

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Vintage Lamp","description":"A lamp with character","category":"Home","price":19.5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
}

func TestPublish_MergedListingAnswers200(t *testing.T) {
	sellerID := uuid.New()
	product := productFixture(sellerID)
	product.Quantity = 3
	svc := &stubCatalogService{
		publishFn: func(ctx context.Context, gotSeller uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
			return product, true, nil
		},
	}
	router := newProductRouter(svc, sellerID)

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Vintage Lamp","description":"A lamp with character","category":"Home","price":19.5,"quantity":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for merge, got %d", rec.Code)
	}

	var resp ProductResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", resp.Quantity)
	}
}

func TestPublish_MissingFields(t *testing.T) {
	svc := &stubCatalogService{
		publishFn: func(ctx context.Context, sellerID uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
			t.Fatal("service must not be called on invalid payload")
			return nil, false, nil
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Lamp"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != middleware.CodeValidation {
		t.Fatalf("expected %s, got %s", middleware.CodeValidation, code)
	}
}

func TestPublish_ZeroPricePassesValidation(t *testing.T) {
	sellerID := uuid.New()
	product := productFixture(sellerID)
	product.Price = 0
	svc := &stubCatalogService{
		publishFn: func(ctx context.Context, gotSeller uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
			if input.Price == nil || *input.Price != 0 {
				t.Fatalf("expected price 0 to reach the service, got %v", input.Price)
			}
			return product, false, nil
		},
	}
	router := newProductRouter(svc, sellerID)

	// A give-away: price present and exactly zero.
	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Free Shelf","description":"Collection only","category":"Home","price":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero-priced listing, got %d: %s", rec.Code, rec.Body)
	}
}

func TestPublish_NegativePriceRejected(t *testing.T) {
	svc := &stubCatalogService{
		publishFn: func(ctx context.Context, sellerID uuid.UUID, input service.ListingInput) (*domain.Product, bool, error) {
			t.Fatal("service must not be called on invalid payload")
			return nil, false, nil
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Lamp","description":"d","category":"Home","price":-1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := &stubCatalogService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
			return nil, repository.ErrProductNotFound
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != middleware.CodeNotFound {
		t.Fatalf("expected %s, got %s", middleware.CodeNotFound, code)
	}
}

func TestUpdateProduct_Forbidden(t *testing.T) {
	svc := &stubCatalogService{
		updateFn: func(ctx context.Context, id, requesterID uuid.UUID, patch service.ListingPatch) (*domain.Product, error) {
			return nil, service.ErrForbidden
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+uuid.NewString(),
		strings.NewReader(`{"title":"Hijacked"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != middleware.CodeForbidden {
		t.Fatalf("expected %s, got %s", middleware.CodeForbidden, code)
	}
}

func TestDeleteProduct_Success(t *testing.T) {
	sellerID := uuid.New()
	var deleted uuid.UUID
	svc := &stubCatalogService{
		deleteFn: func(ctx context.Context, id, requesterID uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	router := newProductRouter(svc, sellerID)

	target := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+target.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != target {
		t.Fatalf("deleted %s, want %s", deleted, target)
	}
}

func TestListProducts_Filters(t *testing.T) {
	sellerID := uuid.New()
	var gotFilter repository.ProductFilter
	svc := &stubCatalogService{
		listFn: func(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
			gotFilter = filter
			return []*domain.Product{productFixture(sellerID)}, nil
		},
	}
	router := newProductRouter(svc, sellerID)

	req := httptest.NewRequest(http.MethodGet,
		"/api/products?category=Home&search=lamp&excludeSeller="+sellerID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFilter.Category != "Home" || gotFilter.Search != "lamp" {
		t.Fatalf("filter not forwarded: %+v", gotFilter)
	}
	if gotFilter.ExcludeSeller == nil || *gotFilter.ExcludeSeller != sellerID {
		t.Fatalf("excludeSeller not forwarded: %+v", gotFilter)
	}
}

func TestListProducts_BadSellerFilter(t *testing.T) {
	svc := &stubCatalogService{
		listFn: func(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
			t.Fatal("service must not be called with an invalid filter")
			return nil, nil
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/products?seller=not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCategoriesList(t *testing.T) {
	svc := &stubCatalogService{
		categoriesFn: func(ctx context.Context) ([]string, error) {
			return []string{"Audio", "Home"}, nil
		},
	}
	router := newProductRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/products/categories/list", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", resp.Categories)
	}
}
