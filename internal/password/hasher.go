// Package password implements the slow salted hashing used for stored
// credentials: argon2id derivation, CSPRNG salts, and constant-time
// verification.
package password

import (
	"context"
	"crypto/subtle"
	"runtime"

	"github.com/dkarklis/gatehouse/internal/common"
	"golang.org/x/crypto/argon2"
)

// Params control the argon2id derivation cost.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	SaltSize  int
	KeySize   uint32
}

// DefaultParams returns the production cost settings.
func DefaultParams() Params {
	return Params{
		Time:      1,
		MemoryKiB: 64 * 1024,
		Threads:   4,
		SaltSize:  32,
		KeySize:   32,
	}
}

// Hasher derives and verifies password digests. A fixed-size slot pool keeps
// concurrent derivations from starving the rest of the process.
type Hasher struct {
	params Params
	slots  chan struct{}
}

func NewHasher(params Params) *Hasher {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		n = 2
	}
	return &Hasher{params: params, slots: make(chan struct{}, n)}
}

// NewSalt returns a fresh CSPRNG salt. Every registration and password
// change gets its own salt.
func (h *Hasher) NewSalt() ([]byte, error) {
	return common.GenerateRandByteArray(h.params.SaltSize)
}

// Hash derives the digest for plaintext under salt. The result is
// deterministic for a fixed (plaintext, salt) pair and never contains
// the plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext, salt []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case h.slots <- struct{}{}:
		defer func() { <-h.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return argon2.IDKey(plaintext, salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeySize), nil
}

// Verify recomputes the digest for plaintext under salt and compares it to
// digest in constant time.
func (h *Hasher) Verify(ctx context.Context, plaintext, salt, digest []byte) (bool, error) {
	computed, err := h.Hash(ctx, plaintext, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}
