package remembertokens

import (
	"context"
	"sync"
	"time"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
)

// InMemoryRepository is a mutex-guarded map implementation for tests and
// single-process use.
type InMemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*models.RememberToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*models.RememberToken)}
}

func (r *InMemoryRepository) Create(_ context.Context, token *models.RememberToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[token.ID] = cloneToken(token)
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*models.RememberToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneToken(token), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *InMemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.byID {
		if token.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *InMemoryRepository) DeleteExpired(_ context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.byID {
		if token.Expired(now) {
			delete(r.byID, id)
		}
	}
	return nil
}

func cloneToken(t *models.RememberToken) *models.RememberToken {
	c := *t
	c.SecretHash = append([]byte(nil), t.SecretHash...)
	return &c
}
