// Package repomanager wires repository constructors to a database handle and
// exposes schema migration and transaction hooks to the service layer.
package repomanager

import (
	"context"

	"github.com/dkarklis/gatehouse/internal/dbx"
	"github.com/dkarklis/gatehouse/internal/repositories/remembertokens"
	"github.com/dkarklis/gatehouse/internal/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// them either on the plain connection (Conn) or inside WithinTx.
type RepositoryManager interface {
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error

	// Conn returns the non-transactional handle for single-statement work.
	Conn() dbx.DBTX

	// WithinTx runs fn atomically. Rollback on error or panic.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	// Users returns a users.Repository bound to the provided DBTX.
	Users(db dbx.DBTX) users.Repository

	// RememberTokens returns a remembertokens.Repository bound to the
	// provided DBTX.
	RememberTokens(db dbx.DBTX) remembertokens.Repository

	// Close releases the underlying handle.
	Close() error
}
