package repomanager

import (
	"context"
	"sync"

	"github.com/dkarklis/gatehouse/internal/dbx"
	"github.com/dkarklis/gatehouse/internal/repositories/remembertokens"
	"github.com/dkarklis/gatehouse/internal/repositories/users"
)

// InMemoryRepositoryManager vends the map-backed repositories. The DBTX
// argument is ignored; the repositories carry their own state. WithinTx
// serializes callers with a manager-wide lock, approximating transaction
// atomicity for multi-repository updates.
type InMemoryRepositoryManager struct {
	mu             sync.Mutex
	users          *users.InMemoryRepository
	rememberTokens *remembertokens.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:          users.NewInMemoryRepository(),
		rememberTokens: remembertokens.NewInMemoryRepository(),
	}
}

// RunMigrations is a no-op; there is no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

// Conn returns nil; the in-memory repositories ignore their DBTX.
func (m *InMemoryRepositoryManager) Conn() dbx.DBTX { return nil }

func (m *InMemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RememberTokens(dbx.DBTX) remembertokens.Repository {
	return m.rememberTokens
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
