package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecofinds/internal/domain"
	"ecofinds/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// SessionTTL is the fixed lifetime of a session credential
	SessionTTL = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid session credential")
	ErrForbidden          = errors.New("not allowed to modify this resource")
)

// Claims represents the JWT claims carried by a session credential
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// ProfilePatch carries the optional mutable profile fields
type ProfilePatch struct {
	Name   *string
	Avatar *string
}

// AuthService defines the interface for authentication and account logic
type AuthService interface {
	Register(ctx context.Context, name, email, password, avatar string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch ProfilePatch) (*domain.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtSecret  string
	sessionTTL time.Duration
}

// NewAuthService creates a new instance of AuthService. A zero sessionTTL
// falls back to the default SessionTTL.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = SessionTTL
	}
	return &authService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new account and issues a session credential. There is
// deliberately no existence pre-check: the unique email index reports the
// duplicate, which closes the race window a lookup-then-insert would leave.
func (s *authService) Register(ctx context.Context, name, email, password, avatar string) (*domain.User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hashedPassword),
		Name:         name,
		Avatar:       avatar,
		Role:         "user",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrEmailTaken {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user. An unknown email and a wrong password produce
// the same ErrInvalidCredentials so callers cannot tell which one failed.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user, token, nil
}

// ResolveSession verifies a credential and resolves the acting user. Every
// verification failure, including a user that no longer exists, collapses
// into ErrInvalidSession.
func (s *authService) ResolveSession(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}

	return user, nil
}

// GetUserByID retrieves a user's account
func (s *authService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies name/avatar changes. Only the account holder or an
// admin may do this.
func (s *authService) UpdateProfile(ctx context.Context, targetID, actorID uuid.UUID, actorRole string, patch ProfilePatch) (*domain.User, error) {
	if targetID != actorID && actorRole != "admin" {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
