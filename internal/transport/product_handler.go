package transport

import (
	"net/http"

	"ecofinds/internal/domain"
	"ecofinds/internal/middleware"
	"ecofinds/internal/repository"
	"ecofinds/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the publish-listing payload. Price is a
// pointer so a zero-priced give-away stays distinguishable from an absent
// price.
type CreateProductRequest struct {
	Title            string                `json:"title" validate:"required"`
	Description      string                `json:"description" validate:"required"`
	Category         string                `json:"category" validate:"required"`
	Price            *float64              `json:"price" validate:"required,gte=0"`
	Quantity         int                   `json:"quantity"`
	Condition        string                `json:"condition"`
	WorkingCondition string                `json:"working_condition"`
	Image            string                `json:"image"`
	Images           []string              `json:"images"`
	Tags             []string              `json:"tags"`
	Details          domain.ProductDetails `json:"details"`
}

// UpdateProductRequest represents the partial-update payload; absent
// fields are left untouched
type UpdateProductRequest struct {
	Title            *string                `json:"title"`
	Description      *string                `json:"description"`
	Category         *string                `json:"category"`
	Price            *float64               `json:"price"`
	Quantity         *int                   `json:"quantity"`
	Condition        *string                `json:"condition"`
	WorkingCondition *string                `json:"working_condition"`
	Image            *string                `json:"image"`
	Images           *[]string              `json:"images"`
	Tags             *[]string              `json:"tags"`
	Details          *domain.ProductDetails `json:"details"`
}

// ProductHandler handles HTTP requests for listings
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/categories/list", h.Categories)
		r.Get("/{id}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Publish)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Publish creates a listing, or merges it into an existing duplicate of
// the same (title, category, price, condition) by the same seller. A
// merge answers 200, a new listing 201.
func (h *ProductHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Publish validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body")
		return
	}

	input := service.ListingInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Price:            req.Price,
		Quantity:         req.Quantity,
		Condition:        domain.Condition(req.Condition),
		WorkingCondition: req.WorkingCondition,
		Image:            req.Image,
		Images:           req.Images,
		Tags:             req.Tags,
		Details:          req.Details,
	}

	product, merged, err := h.catalogService.Publish(r.Context(), sellerID, input)
	if err != nil {
		switch err {
		case service.ErrMissingFields, service.ErrInvalidCondition, service.ErrNegativePrice:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, err.Error())
		default:
			h.logger.Error("Publish failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to publish listing")
		}
		return
	}

	status := http.StatusCreated
	if merged {
		status = http.StatusOK
		h.logger.Info("Listing merged into existing duplicate",
			zap.String("product_id", product.ID.String()),
			zap.String("seller_id", sellerID.String()),
		)
	} else {
		h.logger.Info("Listing published",
			zap.String("product_id", product.ID.String()),
			zap.String("seller_id", sellerID.String()),
		)
	}

	middleware.RespondWithJSON(w, status, toProductResponse(product))
}

// List returns the catalog, optionally filtered by category, seller,
// everyone-but-seller, and free-text search
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	if seller := r.URL.Query().Get("seller"); seller != "" {
		sellerID, err := uuid.Parse(seller)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid seller ID")
			return
		}
		filter.SellerID = &sellerID
	}

	if excluded := r.URL.Query().Get("excludeSeller"); excluded != "" {
		excludedID, err := uuid.Parse(excluded)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid excludeSeller ID")
			return
		}
		filter.ExcludeSeller = &excludedID
	}

	products, err := h.catalogService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductList(products))
}

// Get returns a single listing
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Update applies a partial update; only the listing's owner may do this
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body")
		return
	}

	patch := service.ListingPatch{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Price:            req.Price,
		Quantity:         req.Quantity,
		WorkingCondition: req.WorkingCondition,
		Image:            req.Image,
		Images:           req.Images,
		Tags:             req.Tags,
		Details:          req.Details,
	}
	if req.Condition != nil {
		condition := domain.Condition(*req.Condition)
		patch.Condition = &condition
	}

	product, err := h.catalogService.Update(r.Context(), id, requesterID, patch)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
		case service.ErrForbidden:
			middleware.RespondWithError(w, http.StatusForbidden, middleware.CodeForbidden, "not allowed to modify this listing")
		case service.ErrInvalidCondition, service.ErrNegativePrice:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, err.Error())
		default:
			h.logger.Error("Update failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete removes a listing; only the owner may do this
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	if err := h.catalogService.Delete(r.Context(), id, requesterID); err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
		case service.ErrForbidden:
			middleware.RespondWithError(w, http.StatusForbidden, middleware.CodeForbidden, "not allowed to modify this listing")
		default:
			h.logger.Error("Delete failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to delete product")
		}
		return
	}

	h.logger.Info("Listing deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Categories returns the distinct categories in the catalog
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}
