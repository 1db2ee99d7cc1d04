package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()
	users := repository.NewMemoryUsers(repository.NewMemoryStore())
	return NewAuthService(users, "test-secret", time.Hour)
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := setupAuth(t)

	u, err := auth.Register(ctx, "budi", "rahasia", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != domain.RoleKasir {
		t.Fatalf("expected default kasir role, got %s", u.Role)
	}
	if u.PasswordHash == "rahasia" {
		t.Fatalf("password stored in plain text")
	}

	token, logged, err := auth.Login(ctx, "budi", "rahasia")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || logged.ID != u.ID {
		t.Fatalf("bad login result")
	}

	resolved, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if resolved.Username != "budi" {
		t.Fatalf("resolved wrong user: %s", resolved.Username)
	}
}

func TestAuth_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	auth := setupAuth(t)
	if _, err := auth.Register(ctx, "budi", "x", domain.RoleKasir); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(ctx, "budi", "y", domain.RoleKasir); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	auth := setupAuth(t)
	if _, err := auth.Register(ctx, "budi", "benar", domain.RoleKasir); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Login(ctx, "budi", "salah"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuth_Authenticate_BadToken(t *testing.T) {
	ctx := context.Background()
	auth := setupAuth(t)
	if _, err := auth.Authenticate(ctx, "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	// token signed with another secret is rejected
	other := setupAuth(t)
	if _, err := other.Register(ctx, "budi", "x", domain.RoleKasir); err != nil {
		t.Fatalf("register: %v", err)
	}
	foreign := NewAuthService(repository.NewMemoryUsers(repository.NewMemoryStore()), "other-secret", time.Hour)
	if _, err := foreign.Register(ctx, "budi", "x", domain.RoleKasir); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := foreign.Login(ctx, "budi", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := other.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
