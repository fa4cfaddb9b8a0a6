// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authsvc/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when an account is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the identity store contract: one record per account.
// Lookups are case-insensitive on email and exclude the password hash and the
// refresh token unless the caller uses one of the explicit With variants.
// Email uniqueness is enforced here, at the store boundary, by the database's
// unique index; callers may pre-check for a friendlier error but must not rely
// on that check for correctness.
type UserRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByIDWithRefreshToken retrieves an account including its stored
	// refresh token. Used only by the refresh flow for the equality check.
	FindByIDWithRefreshToken(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByEmailWithPassword retrieves an account including its password
	// hash. Used only by the login flow for credential verification.
	FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new account. It fails with the duplicate-email
	// conflict error if the (lowercased) email is already taken.
	Create(ctx context.Context, user *entity.User) error

	// Update persists a full account mutation with field validation.
	Update(ctx context.Context, user *entity.User) error

	// UpdateSession persists only the refresh-token slot and last-login
	// timestamp, skipping full-field validation. Called on every login,
	// registration and logout.
	UpdateSession(ctx context.Context, user *entity.User) error
}
