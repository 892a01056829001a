// Package user holds customer and administrator accounts. The engine only
// consumes the identity (id + admin flag) and the shipping address; profile
// management is a thin wrapper around the store.
package user

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when the requested account does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a storefront account. PasswordHash is a bcrypt digest; the clear
// password never leaves the auth service.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Address      string
	Admin        bool
}

// ProfileUpdate describes a partial profile edit; nil fields are untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Address   *string
}

// Store defines account persistence.
type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*User, error)
	Count(ctx context.Context) (int, error)
}
