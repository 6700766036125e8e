package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ragchat/internal/model"
	"ragchat/internal/pkg/jwtutil"
)

// UserRepo is the persistence surface the auth service needs. Lookups return
// (nil, nil) when no row matches.
type UserRepo interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

// TokenStore tracks live tokens by jti so logout can revoke before expiry.
type TokenStore interface {
	Save(ctx context.Context, jti string, userID uint, ttl time.Duration) error
	IsActive(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string) error
}

type AuthService struct {
	users     UserRepo
	tokens    TokenStore
	jwtSecret string
	tokenTTL  time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthService(users UserRepo, tokens TokenStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, jti, expiresAt, err := jwtutil.GenerateToken(s.jwtSecret, s.tokenTTL, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, jti, user.ID, time.Until(expiresAt)); err != nil {
		return nil, asDependencyFailure(err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Validate resolves a bearer token to its user. A token is valid only while
// its signature checks out, it has not expired, and its jti is still live in
// the token store.
func (s *AuthService) Validate(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		if errors.Is(err, jwtutil.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	active, err := s.tokens.IsActive(ctx, claims.ID)
	if err != nil {
		return nil, asDependencyFailure(err)
	}
	if !active {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// Logout revokes the token. Unknown or malformed tokens are treated as
// already revoked, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		return asDependencyFailure(err)
	}
	return nil
}
