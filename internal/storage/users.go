// Package storage defines the persistence contract for user credentials.
package storage

import (
	"context"
	"errors"
)

// ErrUsernameTaken reports an insert that collided with an existing row.
var ErrUsernameTaken = errors.New("storage: username exists already")

// UserStore persists username/password pairs. Create is atomic
// insert-or-fail; Verify is a point lookup on the exact pair.
type UserStore interface {
	Create(ctx context.Context, username, password string) error
	Verify(ctx context.Context, username, password string) (bool, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
