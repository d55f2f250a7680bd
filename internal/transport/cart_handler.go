package transport

import (
	"net/http"

	"ecofinds/internal/middleware"
	"ecofinds/internal/repository"
	"ecofinds/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart payload
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// CartHandler handles HTTP requests for the cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes; every route requires a session
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.Get)
		r.Post("/add", h.Add)
		r.Delete("/remove/{productID}", h.Remove)
		r.Patch("/decrease/{productID}", h.Decrease)
	})
}

// Add puts a product in the cart, or bumps its quantity if already there
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add-to-cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	items, err := h.cartService.AddToCart(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "product not found")
			return
		}

		h.logger.Error("Add to cart failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to add to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(items))
}

// Get returns the user's cart with products joined
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	items, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(items))
}

// Remove drops an entire cart line. Removing a product that is not in the
// cart is not an error.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	items, err := h.cartService.RemoveFromCart(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("Remove from cart failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to remove from cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(items))
}

// Decrease lowers a cart line by one unit, removing it at zero
func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid product ID")
		return
	}

	items, err := h.cartService.DecreaseItem(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("Decrease cart item failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to decrease cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(items))
}
