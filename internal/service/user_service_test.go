package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:       "  Alice@Example.COM ",
		DisplayName: " Alice ",
		Password:    "secret123",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.DisplayName != "Alice" {
		t.Fatalf("display name not trimmed: %q", user.DisplayName)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")) != nil {
		t.Fatal("hash does not verify against the original password")
	}
	if _, ok := repo.users[user.ID]; !ok {
		t.Fatal("user was not persisted")
	}
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "not-an-email", Password: "x"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@b.com", Password: "   "}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for blank password, got %v", err)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "bob@example.com", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// El email se normaliza también en el login.
	user, err := svc.Authenticate(ctx, " BOB@example.com ", "hunter2!")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "bob@example.com", Password: "hunter2!"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())
	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown users must look like bad credentials, got %v", err)
	}
}
