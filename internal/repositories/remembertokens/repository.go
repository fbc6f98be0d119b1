// Package remembertokens declares the storage contract for persistent
// remember-me tokens and provides its PostgreSQL and in-memory
// implementations. Rows hold only the SHA-256 of the client secret.
package remembertokens

import (
	"context"
	"time"

	"github.com/dkarklis/gatehouse/internal/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// remember tokens.
type Repository interface {
	// Create stores a new remember token row.
	Create(ctx context.Context, token *models.RememberToken) error

	// GetByID returns the token row, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.RememberToken, error)

	// Delete removes a token by id. Deleting a non-existent token is not
	// an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every token belonging to userID and no others.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) error
}
