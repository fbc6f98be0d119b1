package users

import (
	"context"
	"sync"
	"time"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
)

// InMemoryRepository is a mutex-guarded map implementation for tests and
// single-process use. Create checks and inserts the email under one lock,
// giving the same single-winner semantics as the SQL unique index.
type InMemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, common.ErrDuplicateEmail
	}

	stored := cloneUser(user)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return cloneUser(stored), nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *InMemoryRepository) UpdatePassword(_ context.Context, id string, hash, salt []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	user.PasswordHash = append([]byte(nil), hash...)
	user.PasswordSalt = append([]byte(nil), salt...)
	user.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}

// cloneUser copies the record so callers never share slices with the store.
func cloneUser(u *models.User) *models.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.PasswordSalt = append([]byte(nil), u.PasswordSalt...)
	return &c
}
