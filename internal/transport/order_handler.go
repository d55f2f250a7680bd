package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"ecofinds/internal/middleware"
	"ecofinds/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutRequest represents the checkout payload. The body is optional;
// an absent payment method defaults to razorpay.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// OrderHandler handles HTTP requests for checkout and order history
type OrderHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService service.CheckoutService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all order routes; every route requires a session
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/checkout", h.Checkout)
		r.Get("/history", h.History)
	})
}

// Checkout converts the user's cart into an order
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body")
		return
	}

	order, err := h.checkoutService.Checkout(r.Context(), userID, req.PaymentMethod)
	if err != nil {
		switch err {
		case service.ErrEmptyCart:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeEmptyCart, "cart is empty")
		case service.ErrUnknownPaymentMethod:
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "unknown payment method")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to checkout")
		}
		return
	}

	h.logger.Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
		zap.String("payment_status", order.PaymentStatus),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toOrderResponse(order))
}

// History returns the user's orders, newest first
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}

	orders, err := h.checkoutService.OrderHistory(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load order history", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to load order history")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderList(orders))
}
