// Package auth builds and verifies the signed cookie envelopes used to
// transport session and remember-me state. Envelopes are HS256 JWTs; the
// parser pins the signing method and fails closed on any defect. The
// remember envelope only transports the token id and secret; authority
// stays with the server-side digest comparison.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidEnvelope covers every parse failure: bad signature, expiry,
// malformed claims, or a kind mismatch.
var ErrInvalidEnvelope = errors.New("invalid cookie envelope")

// Envelope kinds. A session envelope cannot be replayed as a remember
// envelope or vice versa.
const (
	kindSession  = "session"
	kindRemember = "remember"
)

// Claims extends the registered claim set with the envelope kind and, for
// remember envelopes, the client-held token secret. The server-side token
// id rides in the registered ID (jti) claim.
type Claims struct {
	jwt.RegisteredClaims
	Kind   string `json:"knd"`
	Secret string `json:"sec,omitempty"`
}

func newEnvelope(kind, userID, tokenID, secret string, key []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Kind:   kind,
		Secret: secret,
	})
	return token.SignedString(key)
}

func parseEnvelope(tokenString, kind string, key []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Kind != kind {
		return nil, ErrInvalidEnvelope
	}
	return claims, nil
}

// NewSessionEnvelope mints the signed session cookie value for userID.
func NewSessionEnvelope(userID string, key []byte, validity time.Duration) (string, error) {
	return newEnvelope(kindSession, userID, "", "", key, validity)
}

// ParseSessionEnvelope returns the userID from a session cookie value.
func ParseSessionEnvelope(tokenString string, key []byte) (string, error) {
	claims, err := parseEnvelope(tokenString, kindSession, key)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidEnvelope
	}
	return claims.Subject, nil
}

// NewRememberEnvelope mints the signed remember cookie value carrying the
// server-side token id and the client-held secret.
func NewRememberEnvelope(userID, tokenID, secret string, key []byte, validity time.Duration) (string, error) {
	return newEnvelope(kindRemember, userID, tokenID, secret, key, validity)
}

// ParseRememberEnvelope returns userID, tokenID, and secret from a remember
// cookie value.
func ParseRememberEnvelope(tokenString string, key []byte) (userID, tokenID, secret string, err error) {
	claims, err := parseEnvelope(tokenString, kindRemember, key)
	if err != nil {
		return "", "", "", err
	}
	if claims.Subject == "" || claims.ID == "" || claims.Secret == "" {
		return "", "", "", ErrInvalidEnvelope
	}
	return claims.Subject, claims.ID, claims.Secret, nil
}
