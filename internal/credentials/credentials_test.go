package credentials

import (
	"context"
	"errors"
	"testing"

	"warren/internal/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(storage.NewMemoryStore())
}

func TestStore_AddRemoveConnection(t *testing.T) {
	s := newStore(t)

	if err := s.AddConnection(1); err != nil {
		t.Fatalf("Expected AddConnection to succeed, got %v", err)
	}
	if err := s.AddConnection(1); !errors.Is(err, ErrDuplicateConnection) {
		t.Errorf("Expected ErrDuplicateConnection, got %v", err)
	}
	if err := s.RemoveConnection(1); err != nil {
		t.Fatalf("Expected RemoveConnection to succeed, got %v", err)
	}
	if err := s.RemoveConnection(1); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Expected ErrUnknownConnection, got %v", err)
	}
}

func TestStore_CreateAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.AddConnection(1)

	if err := s.Create(ctx, 1, "alice", "pw"); err != nil {
		t.Fatalf("Expected Create to succeed, got %v", err)
	}

	// Create does not log the creator in
	if name, _ := s.NameOf(1); name != "" {
		t.Errorf("Expected no binding after create, got '%s'", name)
	}

	if err := s.Create(ctx, 1, "alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}

	if err := s.Login(ctx, 1, "alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Expected ErrBadCredentials, got %v", err)
	}
	if err := s.Login(ctx, 1, "nobody", "pw"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Expected ErrBadCredentials, got %v", err)
	}

	if err := s.Login(ctx, 1, "alice", "pw"); err != nil {
		t.Fatalf("Expected Login to succeed, got %v", err)
	}
	if name, _ := s.NameOf(1); name != "alice" {
		t.Errorf("Expected binding 'alice', got '%s'", name)
	}
}

func TestStore_LoginReplacesBinding(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.AddConnection(1)
	s.Create(ctx, 1, "alice", "pw")
	s.Create(ctx, 1, "bob", "pw")

	s.Login(ctx, 1, "alice", "pw")
	if err := s.Login(ctx, 1, "bob", "pw"); err != nil {
		t.Fatalf("Expected Login to succeed, got %v", err)
	}
	if name, _ := s.NameOf(1); name != "bob" {
		t.Errorf("Expected binding 'bob', got '%s'", name)
	}

	// A failed login leaves the current binding in place
	if err := s.Login(ctx, 1, "alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Expected ErrBadCredentials, got %v", err)
	}
	if name, _ := s.NameOf(1); name != "bob" {
		t.Errorf("Expected binding 'bob' after failed login, got '%s'", name)
	}
}

func TestStore_SameUserOnManyConnections(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.AddConnection(1)
	s.AddConnection(2)
	s.Create(ctx, 1, "alice", "pw")

	if err := s.Login(ctx, 1, "alice", "pw"); err != nil {
		t.Fatalf("Expected Login to succeed, got %v", err)
	}
	if err := s.Login(ctx, 2, "alice", "pw"); err != nil {
		t.Fatalf("Expected second Login to succeed, got %v", err)
	}
	if name, _ := s.NameOf(1); name != "alice" {
		t.Errorf("Expected binding 'alice', got '%s'", name)
	}
	if name, _ := s.NameOf(2); name != "alice" {
		t.Errorf("Expected binding 'alice', got '%s'", name)
	}
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.AddConnection(1)
	s.Create(ctx, 1, "alice", "pw")
	s.Login(ctx, 1, "alice", "pw")

	if err := s.Logout(1); err != nil {
		t.Fatalf("Expected Logout to succeed, got %v", err)
	}
	if name, _ := s.NameOf(1); name != "" {
		t.Errorf("Expected empty binding after logout, got '%s'", name)
	}

	// Logging out while logged out succeeds
	if err := s.Logout(1); err != nil {
		t.Errorf("Expected idempotent Logout to succeed, got %v", err)
	}

	if err := s.Logout(2); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Expected ErrUnknownConnection, got %v", err)
	}
}

func TestStore_UnknownConnection(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if _, err := s.NameOf(1); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Expected ErrUnknownConnection, got %v", err)
	}
	if err := s.Create(ctx, 1, "alice", "pw"); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Expected ErrUnknownConnection, got %v", err)
	}
	if err := s.Login(ctx, 1, "alice", "pw"); !errors.Is(err, ErrUnknownConnection) {
		t.Errorf("Expected ErrUnknownConnection, got %v", err)
	}
}
