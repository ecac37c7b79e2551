package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dk2904/aircraft-factory/internal/auth"
)

type stubTokenIssuer struct {
	err error
}

func (s *stubTokenIssuer) Generate(userID int64, username string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("token-%d-%s", userID, username), nil
}

func TestLogin(t *testing.T) {
	store, users := newFixture()
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users["machinist"].PasswordHash = hash
	svc := NewAuthService(store, &stubTokenIssuer{})

	token, err := svc.Login(context.Background(), "machinist", "s3cret")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if token != "token-2-machinist" {
		t.Errorf("unexpected token %q", token)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store, users := newFixture()
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users["machinist"].PasswordHash = hash
	svc := NewAuthService(store, &stubTokenIssuer{})

	_, err = svc.Login(context.Background(), "machinist", "wrong")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
	if err.Error() != "Invalid username or password." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	store, _ := newFixture()
	svc := NewAuthService(store, &stubTokenIssuer{})

	_, err := svc.Login(context.Background(), "ghost", "s3cret")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
	// same message as a wrong password
	if err.Error() != "Invalid username or password." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLogin_Validation(t *testing.T) {
	store, _ := newFixture()
	svc := NewAuthService(store, &stubTokenIssuer{})

	if _, err := svc.Login(context.Background(), "", "s3cret"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty username: expected ErrValidation, got: %v", err)
	}
	if _, err := svc.Login(context.Background(), "machinist", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty password: expected ErrValidation, got: %v", err)
	}
}
