package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
	"github.com/safaiwalay/dispatch/internal/service/auth/tokenmanager"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Default hasher to use if not provided
var DefaultHasher PasswordHasher = BcryptHasher{}

type Config struct {
	// Hasher to use during registration or login
	// Default bcrypt hasher is used if not set
	Hasher PasswordHasher
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
}

// Auth service
type AuthService struct {
	// Manager to issue token pairs (access and refresh)
	token *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Repository to access long term data
	storage repository.Storage
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Register creates a customer account and returns a fresh token pair
// New accounts always start with the customer role
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (models.TokenPair, error) {
	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Email:          p.Email,
		Name:           p.Name,
		Phone:          p.Phone,
		Address:        p.Address,
		HashedPassword: hash,
		Role:           models.RoleUser,
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	// Deleted accounts must not authenticate
	if user.IsDeleted {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// RefreshPair exchanges a one-shot refresh token for a fresh pair
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, err
	}
	if user.IsDeleted {
		return models.TokenPair{}, apperrors.ErrUserNotFound
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Set auth tokens (access, refresh) to response as http only cookies
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	setCookie := func(name string, token models.IssuedToken) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    token.Value,
			Path:     "/",
			Expires:  token.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	setCookie(accessCookieName, pair.Access)
	setCookie(refreshCookieName, pair.Refresh)
}

// Set auth data to request (useful in tests and internal clients)
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	r.AddCookie(&http.Cookie{Name: refreshCookieName, Value: pair.Refresh.Value})
}

// Get refresh token string from request
func (s *AuthService) GetRefreshString(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("refresh cookie not found. Err: %w", apperrors.ErrRefreshTokenNotFound)
	}
	return cookie.Value, nil
}

// Auth authenticates a request and returns the user
// Access token is read from the 'Authorization: Bearer' header first and
// falls back to the access cookie
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access, err := accessFromRequest(r)
	if err != nil {
		return models.User{}, err
	}

	claims, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, err
	}
	if user.IsDeleted {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}

func accessFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}

	cookie, err := r.Cookie(accessCookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.New("no access token in request")
	}

	// Ignore cookies that are expired by clock but still sent
	if !cookie.Expires.IsZero() && cookie.Expires.Before(time.Now()) {
		return "", errors.New("access token cookie expired")
	}

	return cookie.Value, nil
}
