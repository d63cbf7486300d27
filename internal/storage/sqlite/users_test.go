package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"warren/internal/storage"
)

func openTestStore(t *testing.T, path string) *UserStore {
	t.Helper()
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	s := NewUserStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserStore_CreateAndVerify(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "db", "password.db"))

	if err := s.Create(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Expected Create to succeed, got %v", err)
	}
	if err := s.Create(ctx, "alice", "other"); !errors.Is(err, storage.ErrUsernameTaken) {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}

	ok, err := s.Verify(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("Expected Verify to succeed for the stored pair")
	}

	ok, err = s.Verify(ctx, "alice", "wrong")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("Expected Verify to fail for a wrong password")
	}

	ok, err = s.Verify(ctx, "nobody", "pw")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("Expected Verify to fail for an unknown username")
	}
}

func TestUserStore_Count(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "password.db"))

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users, got %d", count)
	}

	s.Create(ctx, "alice", "pw")
	s.Create(ctx, "bob", "pw")

	count, err = s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 users, got %d", count)
	}
}

// Credentials survive closing and reopening the database file.
func TestUserStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "password.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	s := NewUserStore(db)
	if err := s.Create(ctx, "bob", "pw"); err != nil {
		t.Fatalf("Expected Create to succeed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	reopened := openTestStore(t, path)
	ok, err := reopened.Verify(ctx, "bob", "pw")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("Expected credentials to survive a reopen")
	}
}
