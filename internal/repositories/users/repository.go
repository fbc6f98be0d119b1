// Package users declares the storage contract for credential records and
// provides its PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dkarklis/gatehouse/internal/models"
)

// Repository defines storage operations for user credential records.
// Emails are expected normalized (trimmed, lowercased) by the caller.
type Repository interface {
	// Create inserts a new user. An already-taken email yields
	// common.ErrDuplicateEmail; the storage unique index arbitrates
	// concurrent attempts so at most one of them wins.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given normalized email,
	// or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdatePassword replaces the stored hash and salt for the user.
	// A missing user yields common.ErrNotFound.
	UpdatePassword(ctx context.Context, id string, hash, salt []byte) error

	// Delete removes the user record. Deleting a non-existent user is not
	// an error.
	Delete(ctx context.Context, id string) error
}
