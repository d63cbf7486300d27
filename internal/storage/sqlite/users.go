package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"

	"warren/internal/storage"
)

const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// UserStore persists username/password rows in the password table.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a row, failing with storage.ErrUsernameTaken when the
// username exists.
func (s *UserStore) Create(ctx context.Context, username, password string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password (username, password) VALUES (?, ?)
	`, username, password)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Verify reports whether a row with exactly (username, password) exists.
func (s *UserStore) Verify(ctx context.Context, username, password string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM password WHERE username = ? AND password = ?
	`, username, password).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return true, nil
}

// Count returns the total number of credential rows.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM password`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *UserStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraint || code == sqliteConstraintPrimaryKey || code == sqliteConstraintUnique
	}
	return false
}
