// Package services contains the business logic of gatehouse: credential
// registration and verification, remember-token lifecycle, and session
// management over an abstract client state.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/dbx"
	"github.com/dkarklis/gatehouse/internal/models"
	"github.com/dkarklis/gatehouse/internal/password"
	"github.com/dkarklis/gatehouse/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// Registration field bounds.
const (
	MaxNameLength     = 50
	MaxEmailLength    = 255
	MinPasswordLength = 6
	MaxPasswordLength = 40
)

// emailPattern is deliberately permissive; stronger assurance would come
// from delivery, which is out of scope.
var emailPattern = regexp.MustCompile(`(?i)\A[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+\z`)

// RegistrationInput carries one registration attempt. The plaintext fields
// are never persisted or logged.
type RegistrationInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// CredentialService owns stored credentials: registration with validation,
// lookups, password verification, and the password lifecycle.
type CredentialService struct {
	repos  repomanager.RepositoryManager
	hasher *password.Hasher

	// decoy material so Authenticate can burn the same hashing work on
	// unknown emails as on known ones.
	decoySalt []byte
	decoyHash []byte
}

// NewCredentialService constructs the service and pre-computes the decoy
// digest used for unknown-email logins.
func NewCredentialService(m repomanager.RepositoryManager, h *password.Hasher) (*CredentialService, error) {
	salt, err := h.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generating decoy salt: %w", err)
	}
	plaintext, err := common.GenerateRandByteArray(32)
	if err != nil {
		return nil, fmt.Errorf("generating decoy plaintext: %w", err)
	}
	digest, err := h.Hash(context.Background(), plaintext, salt)
	if err != nil {
		return nil, fmt.Errorf("hashing decoy: %w", err)
	}
	common.WipeByteArray(plaintext)

	return &CredentialService{repos: m, hasher: h, decoySalt: salt, decoyHash: digest}, nil
}

// normalizeEmail lowercases and trims an address; all storage and lookups
// use the normalized form, which makes uniqueness case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, hashes the password under a fresh salt, and
// stores the user. All failing fields are reported together in a
// *common.ValidationError; a taken email yields common.ErrDuplicateEmail.
func (s *CredentialService) Register(ctx context.Context, in RegistrationInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	// Cheap duplicate check before the expensive hash. The unique index
	// still arbitrates registrations that race past it.
	if _, err := s.repos.Users(s.repos.Conn()).GetByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	digest, err := s.hasher.Hash(ctx, []byte(in.Password), salt)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
		PasswordSalt: salt,
	}
	created, err := s.repos.Users(s.repos.Conn()).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// FindByEmail returns the user for the (normalized) email, or
// common.ErrNotFound.
func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repos.Users(s.repos.Conn()).GetByEmail(ctx, normalizeEmail(email))
}

// FindByID returns the user for the id, or common.ErrNotFound.
func (s *CredentialService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.repos.Conn()).GetByID(ctx, id)
}

// VerifyPassword checks plaintext against the user's stored digest in
// constant time.
func (s *CredentialService) VerifyPassword(ctx context.Context, user *models.User, plaintext string) (bool, error) {
	return s.hasher.Verify(ctx, []byte(plaintext), user.PasswordSalt, user.PasswordHash)
}

// Authenticate verifies email+password. Unknown emails burn the same
// hashing work as known ones, and both failures return
// common.ErrInvalidCredentials, so the caller cannot tell them apart.
func (s *CredentialService) Authenticate(ctx context.Context, email, plaintext string) (*models.User, error) {
	user, err := s.repos.Users(s.repos.Conn()).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if _, derr := s.hasher.Verify(ctx, []byte(plaintext), s.decoySalt, s.decoyHash); derr != nil {
				return nil, common.ErrInternal
			}
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	ok, err := s.VerifyPassword(ctx, user, plaintext)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the current password, validates the next one, and
// swaps hash+salt in the same transaction that revokes every remember token
// of the user. Tokens issued under the old password never outlive it.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, current, next, confirmation string) error {
	user, err := s.repos.Users(s.repos.Conn()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	ok, err := s.VerifyPassword(ctx, user, current)
	if err != nil {
		return common.ErrInternal
	}
	if !ok {
		return common.ErrInvalidCredentials
	}

	if err := validatePassword(next, confirmation); err != nil {
		return err
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	digest, err := s.hasher.Hash(ctx, []byte(next), salt)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repos.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).UpdatePassword(ctx, userID, digest, salt); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repos.RememberTokens(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("error revoking remember tokens: %w", err)
		}
		return nil
	})
}

// DeleteAccount removes the user and every remember token in one
// transaction.
func (s *CredentialService) DeleteAccount(ctx context.Context, userID string) error {
	return s.repos.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.RememberTokens(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("error revoking remember tokens: %w", err)
		}
		if err := s.repos.Users(tx).Delete(ctx, userID); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
}

func validateRegistration(in RegistrationInput) error {
	verr := common.NewValidationError()

	if in.Name == "" {
		verr.Add("name", "can't be blank")
	} else if len(in.Name) > MaxNameLength {
		verr.Add("name", fmt.Sprintf("is too long (maximum is %d characters)", MaxNameLength))
	}

	switch {
	case in.Email == "":
		verr.Add("email", "can't be blank")
	case len(in.Email) > MaxEmailLength:
		verr.Add("email", fmt.Sprintf("is too long (maximum is %d characters)", MaxEmailLength))
	case !emailPattern.MatchString(in.Email):
		verr.Add("email", "is invalid")
	}

	addPasswordErrors(verr, in.Password, in.PasswordConfirmation)

	if verr.Empty() {
		return nil
	}
	return verr
}

func validatePassword(plaintext, confirmation string) error {
	verr := common.NewValidationError()
	addPasswordErrors(verr, plaintext, confirmation)
	if verr.Empty() {
		return nil
	}
	return verr
}

func addPasswordErrors(verr *common.ValidationError, plaintext, confirmation string) {
	switch {
	case plaintext == "":
		verr.Add("password", "can't be blank")
	case len(plaintext) < MinPasswordLength:
		verr.Add("password", fmt.Sprintf("is too short (minimum is %d characters)", MinPasswordLength))
	case len(plaintext) > MaxPasswordLength:
		verr.Add("password", fmt.Sprintf("is too long (maximum is %d characters)", MaxPasswordLength))
	}
	if confirmation != plaintext {
		verr.Add("password_confirmation", "doesn't match password")
	}
}
