package services

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
	"github.com/dkarklis/gatehouse/internal/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mustCreateUser(t *testing.T, m *repomanager.InMemoryRepositoryManager, user *models.User) {
	t.Helper()
	_, err := m.Users(nil).Create(context.Background(), user)
	require.NoError(t, err)
}

func newTokenService(t *testing.T) (*TokenService, *repomanager.InMemoryRepositoryManager, *models.User) {
	t.Helper()
	m := repomanager.NewInMemoryRepositoryManager()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: []byte("digest"),
		PasswordSalt: []byte("salt"),
	}
	mustCreateUser(t, m, user)
	return NewTokenService(m, time.Hour), m, user
}

func TestTokenIssueAndValidate(t *testing.T) {
	svc, _, user := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)
	require.Equal(t, user.ID, issued.UserID)
	require.Len(t, issued.Secret, 64, "secret is 32 random bytes hex encoded")
	require.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	got, err := svc.Validate(ctx, user.ID, issued.ID, issued.Secret)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "ann@example.com", got.Email)
}

// Only a digest of the secret may ever reach storage.
func TestTokenSecretStoredHashed(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	stored, err := m.RememberTokens(nil).GetByID(ctx, issued.ID)
	require.NoError(t, err)
	require.NotEqual(t, []byte(issued.Secret), stored.SecretHash)
	sum := sha256.Sum256([]byte(issued.Secret))
	require.Equal(t, sum[:], stored.SecretHash)
}

func TestTokenSecretsAreUnique(t *testing.T) {
	svc, _, user := newTokenService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.NotEqual(t, first.Secret, second.Secret)
}

func TestTokenValidate_Failures(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	other := &models.User{ID: uuid.NewString(), Name: "Bob", Email: "bob@example.com", PasswordHash: []byte("d"), PasswordSalt: []byte("s")}
	mustCreateUser(t, m, other)

	issued, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("unknown token id", func(t *testing.T) {
		_, err := svc.Validate(ctx, user.ID, uuid.NewString(), issued.Secret)
		require.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.Validate(ctx, user.ID, issued.ID, "deadbeef")
		require.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("token bound to another user", func(t *testing.T) {
		_, err := svc.Validate(ctx, other.ID, issued.ID, issued.Secret)
		require.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("valid token still works after failures", func(t *testing.T) {
		_, err := svc.Validate(ctx, user.ID, issued.ID, issued.Secret)
		require.NoError(t, err)
	})
}

func TestTokenValidate_Expired(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	stale := &models.RememberToken{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		SecretHash: hashTokenSecret("oldsecret"),
		IssuedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, m.RememberTokens(nil).Create(ctx, stale))

	_, err := svc.Validate(ctx, user.ID, stale.ID, "oldsecret")
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestTokenValidate_DanglingUser(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, m.Users(nil).Delete(ctx, user.ID))

	_, err = svc.Validate(ctx, user.ID, issued.ID, issued.Secret)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestTokenRevoke(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	other := &models.User{ID: uuid.NewString(), Name: "Bob", Email: "bob@example.com", PasswordHash: []byte("d"), PasswordSalt: []byte("s")}
	mustCreateUser(t, m, other)

	issued, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("revoke by another user is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, other.ID, issued.ID))
		_, err := svc.Validate(ctx, user.ID, issued.ID, issued.Secret)
		require.NoError(t, err)
	})

	t.Run("revoke kills the token", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, user.ID, issued.ID))
		_, err := svc.Validate(ctx, user.ID, issued.ID, issued.Secret)
		require.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("revoking again is silent", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, user.ID, issued.ID))
	})

	t.Run("revoking an unknown token is silent", func(t *testing.T) {
		require.NoError(t, svc.Revoke(ctx, user.ID, uuid.NewString()))
	})
}

func TestTokenRevokeAll_LeavesOtherUsersAlone(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	other := &models.User{ID: uuid.NewString(), Name: "Bob", Email: "bob@example.com", PasswordHash: []byte("d"), PasswordSalt: []byte("s")}
	mustCreateUser(t, m, other)

	first, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	theirs, err := svc.Issue(ctx, other.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, user.ID))

	_, err = svc.Validate(ctx, user.ID, first.ID, first.Secret)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = svc.Validate(ctx, user.ID, second.ID, second.Secret)
	require.ErrorIs(t, err, common.ErrTokenInvalid)
	_, err = svc.Validate(ctx, other.ID, theirs.ID, theirs.Secret)
	require.NoError(t, err)
}

func TestTokenPurgeExpired(t *testing.T) {
	svc, m, user := newTokenService(t)
	ctx := context.Background()

	live, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	stale := &models.RememberToken{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		SecretHash: hashTokenSecret("oldsecret"),
		IssuedAt:   time.Now().Add(-48 * time.Hour),
		ExpiresAt:  time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, m.RememberTokens(nil).Create(ctx, stale))

	require.NoError(t, svc.PurgeExpired(ctx))

	_, err = m.RememberTokens(nil).GetByID(ctx, stale.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Validate(ctx, user.ID, live.ID, live.Secret)
	require.NoError(t, err)
}
