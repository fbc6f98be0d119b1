package web

import (
	"context"

	"github.com/dkarklis/gatehouse/internal/models"
)

type ctxKey int

const userCtxKey ctxKey = iota

// WithUser attaches the authenticated user to the request context. The gate
// is the only writer; handlers read through UserFrom.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFrom returns the authenticated user, if any. Identity travels only
// through the context, never through package state.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*models.User)
	return user, ok && user != nil
}
