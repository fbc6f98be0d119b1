package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
	"github.com/dkarklis/gatehouse/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// tokenSecretSize is the number of random bytes behind each remember-token
// secret (hex-encoded on the wire).
const tokenSecretSize = 32

// IssuedToken is returned exactly once from Issue. Secret exists only here
// and in the client's cookie; the store keeps its SHA-256.
type IssuedToken struct {
	ID        string
	UserID    string
	Secret    string
	ExpiresAt time.Time
}

// TokenService issues and validates persistent remember tokens. Validation
// fails closed: every defect collapses into common.ErrTokenInvalid.
type TokenService struct {
	repos    repomanager.RepositoryManager
	validity time.Duration
}

func NewTokenService(m repomanager.RepositoryManager, validity time.Duration) *TokenService {
	return &TokenService{repos: m, validity: validity}
}

func hashTokenSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Issue mints a fresh token for userID: a random secret independent of the
// password hash and of any earlier token, stored only as a digest.
func (s *TokenService) Issue(ctx context.Context, userID string) (*IssuedToken, error) {
	secret, err := common.MakeRandHexString(tokenSecretSize)
	if err != nil {
		return nil, common.ErrInternal
	}

	now := time.Now()
	token := &models.RememberToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		SecretHash: hashTokenSecret(secret),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.validity),
	}
	if err := s.repos.RememberTokens(s.repos.Conn()).Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error storing remember token: %w", err)
	}

	return &IssuedToken{ID: token.ID, UserID: userID, Secret: secret, ExpiresAt: token.ExpiresAt}, nil
}

// Validate checks a presented secret against the stored digest in constant
// time and loads the owning user. Unknown id, foreign user, wrong secret,
// expiry, and a deleted user all yield common.ErrTokenInvalid.
func (s *TokenService) Validate(ctx context.Context, userID, tokenID, secret string) (*models.User, error) {
	token, err := s.repos.RememberTokens(s.repos.Conn()).GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, common.ErrInternal
	}

	if subtle.ConstantTimeCompare([]byte(token.UserID), []byte(userID)) != 1 {
		return nil, common.ErrTokenInvalid
	}
	if subtle.ConstantTimeCompare(token.SecretHash, hashTokenSecret(secret)) != 1 {
		return nil, common.ErrTokenInvalid
	}
	if token.Expired(time.Now()) {
		return nil, common.ErrTokenInvalid
	}

	user, err := s.repos.Users(s.repos.Conn()).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Revoke deletes the token when it belongs to userID. Revoking an unknown
// or foreign token is a silent no-op, so sign-out stays idempotent.
func (s *TokenService) Revoke(ctx context.Context, userID, tokenID string) error {
	token, err := s.repos.RememberTokens(s.repos.Conn()).GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return common.ErrInternal
	}
	if token.UserID != userID {
		return nil
	}
	if err := s.repos.RememberTokens(s.repos.Conn()).Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("error revoking remember token: %w", err)
	}
	return nil
}

// RevokeAll deletes every token of userID and touches no one else's.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.repos.RememberTokens(s.repos.Conn()).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking remember tokens: %w", err)
	}
	return nil
}

// PurgeExpired drops tokens past their expiry. Expiry is also checked on
// every Validate; this is storage housekeeping, run at startup.
func (s *TokenService) PurgeExpired(ctx context.Context) error {
	if err := s.repos.RememberTokens(s.repos.Conn()).DeleteExpired(ctx, time.Now()); err != nil {
		return fmt.Errorf("error purging expired tokens: %w", err)
	}
	return nil
}
