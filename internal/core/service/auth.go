package service

import (
	"context"
	"fmt"

	"github.com/dk2904/aircraft-factory/internal/auth"
	"github.com/dk2904/aircraft-factory/internal/port"
)

// TokenIssuer issues a signed token for an authenticated user.
type TokenIssuer interface {
	Generate(userID int64, username string) (string, error)
}

type AuthService struct {
	store  port.Store
	tokens TokenIssuer
}

func NewAuthService(store port.Store, tokens TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Login verifies credentials and returns a signed token. Unknown
// username and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", newError(ErrValidation, "username and password are required.")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return "", newError(ErrForbidden, "Invalid username or password.")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", newError(ErrForbidden, "Invalid username or password.")
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
