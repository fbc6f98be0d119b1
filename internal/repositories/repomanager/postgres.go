package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkarklis/gatehouse/internal/dbx"
	"github.com/dkarklis/gatehouse/internal/migrations"
	"github.com/dkarklis/gatehouse/internal/repositories/remembertokens"
	"github.com/dkarklis/gatehouse/internal/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over a
// shared *sql.DB.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// NewPostgresRepositoryManager opens a pgx database handle for the DSN.
// Migrations are not run here; call RunMigrations explicitly.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresRepositoryManager{db: db}, nil
}

// gooseUpContext is a seam for testing RunMigrations without a database.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

// Conn returns the shared database handle.
func (m *PostgresRepositoryManager) Conn() dbx.DBTX {
	return m.db
}

// WithinTx delegates to dbx.WithTx on the shared handle.
func (m *PostgresRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, m.db, nil, fn)
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RememberTokens returns a remembertokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RememberTokens(db dbx.DBTX) remembertokens.Repository {
	return remembertokens.NewPostgresRepository(db)
}

// Close closes the database handle.
func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
