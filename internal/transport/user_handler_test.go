package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecofinds/internal/domain"
	"ecofinds/internal/middleware"
	"ecofinds/internal/repository"
	"ecofinds/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newUserRouter(svc service.AuthService, actor *domain.User) chi.Router {
	router := chi.NewRouter()
	handler := NewUserHandler(svc, zap.NewNop())
	gate := fakeSession(uuid.Nil, "")
	if actor != nil {
		gate = fakeSession(actor.ID, actor.Role)
	}
	handler.RegisterRoutes(router, gate)
	return router
}

func TestUserGet_PublicProfile(t *testing.T) {
	user := userFixture()
	svc := &stubAuthService{
		getUserFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return user, nil
		},
	}
	router := newUserRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+user.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The raw body must never leak the password hash field.
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("profile response leaks password material")
	}

	var resp UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.ID != user.ID.String() {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestUserGet_NotFound(t *testing.T) {
	svc := &stubAuthService{
		getUserFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, repository.ErrUserNotFound
		},
	}
	router := newUserRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserUpdate_Forbidden(t *testing.T) {
	actor := userFixture()
	svc := &stubAuthService{
		updateProfileFn: func(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch service.ProfilePatch) (*domain.User, error) {
			return nil, service.ErrForbidden
		},
	}
	router := newUserRouter(svc, actor)

	req := httptest.NewRequest(http.MethodPut, "/api/users/"+uuid.NewString(),
		strings.NewReader(`{"name":"Imposter"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != middleware.CodeForbidden {
		t.Fatalf("expected %s, got %s", middleware.CodeForbidden, code)
	}
}

func TestUserUpdate_Self(t *testing.T) {
	actor := userFixture()
	svc := &stubAuthService{
		updateProfileFn: func(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch service.ProfilePatch) (*domain.User, error) {
			if targetID != actor.ID || actorID != actor.ID {
				t.Fatalf("identities not forwarded: target %s actor %s", targetID, actorID)
			}
			if patch.Name == nil || *patch.Name != "Renamed" {
				t.Fatalf("patch not forwarded: %+v", patch)
			}
			updated := *actor
			updated.Name = *patch.Name
			return &updated, nil
		},
	}
	router := newUserRouter(svc, actor)

	req := httptest.NewRequest(http.MethodPut, "/api/users/"+actor.ID.String(),
		strings.NewReader(`{"name":"Renamed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Name != "Renamed" {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}
