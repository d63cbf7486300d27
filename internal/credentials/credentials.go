// Package credentials tracks which username, if any, each connection is
// logged in as, backed by a persisted user store.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"warren/internal/conn"
	"warren/internal/storage"
)

var (
	ErrUnknownConnection   = errors.New("credentials: unknown connection")
	ErrDuplicateConnection = errors.New("credentials: connection already registered")
	ErrUsernameTaken       = errors.New("credentials: username exists already")
	ErrBadCredentials      = errors.New("credentials: wrong username or password")
)

// Store binds connections to usernames. The empty username means the
// connection is not logged in. The binding table carries no lock: it is
// mutated only from the server's run loop.
type Store struct {
	users    storage.UserStore
	bindings map[conn.ID]string
}

func New(users storage.UserStore) *Store {
	return &Store{
		users:    users,
		bindings: make(map[conn.ID]string),
	}
}

// AddConnection registers id as logged out.
func (s *Store) AddConnection(id conn.ID) error {
	if _, exists := s.bindings[id]; exists {
		return ErrDuplicateConnection
	}
	s.bindings[id] = ""
	return nil
}

// RemoveConnection drops the binding entry for id.
func (s *Store) RemoveConnection(id conn.ID) error {
	if _, exists := s.bindings[id]; !exists {
		return ErrUnknownConnection
	}
	delete(s.bindings, id)
	return nil
}

// Create inserts a new credential row. It does not change the login state
// of id.
func (s *Store) Create(ctx context.Context, id conn.ID, username, password string) error {
	if _, exists := s.bindings[id]; !exists {
		return ErrUnknownConnection
	}
	if err := s.users.Create(ctx, username, password); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Login binds id to username iff a row with exactly that pair exists,
// replacing any prior binding for id. A username may be bound to several
// live connections at once.
func (s *Store) Login(ctx context.Context, id conn.ID, username, password string) error {
	if _, exists := s.bindings[id]; !exists {
		return ErrUnknownConnection
	}
	ok, err := s.users.Verify(ctx, username, password)
	if err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}
	if !ok {
		return ErrBadCredentials
	}
	s.bindings[id] = username
	return nil
}

// Logout clears the binding for id. Logging out while already logged out
// succeeds.
func (s *Store) Logout(id conn.ID) error {
	if _, exists := s.bindings[id]; !exists {
		return ErrUnknownConnection
	}
	s.bindings[id] = ""
	return nil
}

// NameOf returns the username id is logged in as, or "" if it is not.
func (s *Store) NameOf(id conn.ID) (string, error) {
	name, exists := s.bindings[id]
	if !exists {
		return "", ErrUnknownConnection
	}
	return name, nil
}
