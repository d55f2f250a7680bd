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

// UpdateProfileRequest represents the profile-update payload; absent
// fields are left untouched
type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UserHandler handles HTTP requests for account profiles
type UserHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Get("/{id}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Put("/{id}", h.Update)
		})
	})
}

// Get returns a user's public profile
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid user ID")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "user not found")
			return
		}

		h.logger.Error("Failed to get user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}

// Update changes a profile; only the account holder or an admin may do it
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actingUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "unauthorized")
		return
	}
	actorRole, _ := middleware.GetUserRole(r.Context())

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid user ID")
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile update validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), targetID, actorID, actorRole, service.ProfilePatch{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		switch err {
		case repository.ErrUserNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, middleware.CodeNotFound, "user not found")
		case service.ErrForbidden:
			middleware.RespondWithError(w, http.StatusForbidden, middleware.CodeForbidden, "not allowed to modify this profile")
		default:
			h.logger.Error("Profile update failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, middleware.CodeInternal, "failed to update profile")
		}
		return
	}

	h.logger.Info("Profile updated", zap.String("user_id", targetID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}
