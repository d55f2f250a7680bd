package middleware

import (
	"context"
	"net/http"
	"strings"

	"ecofinds/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// SessionCookieName is the HttpOnly cookie carrying the session credential.
// Bearer tokens and the cookie are interchangeable.
const SessionCookieName = "token"

// SessionResolver verifies a session credential and resolves the acting
// user. Implemented by the auth service.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
}

// Auth gates protected routes. It accepts the credential from either the
// Authorization header or the session cookie and resolves the user on
// every request, so a deleted account is locked out immediately.
func Auth(sessions SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				logger.Debug("Missing session credential",
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusUnauthorized, CodeUnauthorized, "not authorized, no token")
				return
			}

			user, err := sessions.ResolveSession(r.Context(), token)
			if err != nil {
				logger.Debug("Session resolution failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID.String())
			ctx = context.WithValue(ctx, UserRoleKey, user.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers a well-formed bearer header; anything else falls
// back to the session cookie, so a stray non-bearer Authorization header
// does not lock out a browser with a valid cookie.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUserID extracts the acting user's ID from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts the acting user's role from the request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
