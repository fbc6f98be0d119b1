package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", created)
	}

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byID, err := repo.GetByID(ctx, byEmail.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID.Email != "ann@example.com" || byID.Name != "Ann" {
		t.Fatalf("unexpected user: %+v", byID)
	}
}

func TestInMemory_GetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestInMemory_DuplicateEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleUser()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := sampleUser()
	dup.ID = "22222222-2222-2222-2222-222222222222"
	if _, err := repo.Create(ctx, dup); !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want common.ErrDuplicateEmail, got %v", err)
	}
}

// Many goroutines race to register the same email; exactly one must win and
// the rest must see the duplicate error.
func TestInMemory_ConcurrentDuplicateRegistration(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &models.User{
				ID:           fmt.Sprintf("racer-%d", i),
				Name:         "Racer",
				Email:        "race@example.com",
				PasswordHash: []byte("h"),
				PasswordSalt: []byte("s"),
			}
			_, err := repo.Create(ctx, u)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, dups int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, common.ErrDuplicateEmail):
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || dups != n-1 {
		t.Fatalf("want exactly 1 winner and %d duplicates, got %d and %d", n-1, wins, dups)
	}
}

func TestInMemory_UpdatePassword(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.UpdatePassword(ctx, created.ID, []byte("nh"), []byte("ns")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.PasswordHash) != "nh" || string(got.PasswordSalt) != "ns" {
		t.Fatalf("password not updated: %+v", got)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) && !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}

	if err := repo.UpdatePassword(ctx, "ghost", []byte("x"), []byte("y")); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestInMemory_Delete(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("user still present after delete")
	}
	// email is free again
	if _, err := repo.Create(ctx, sampleUser()); err != nil {
		t.Fatalf("email not released after delete: %v", err)
	}
	// deleting twice is fine
	if err := repo.Delete(ctx, "ghost"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created.PasswordHash[0] = 'X'
	created.Name = "Mallory"

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.PasswordHash) == "Xash" || got.Name == "Mallory" {
		t.Fatalf("store shares memory with callers: %+v", got)
	}
}
