package models

import "time"

// RememberToken is the server-side half of a persistent login. The client
// holds the secret; only its SHA-256 digest is stored here.
type RememberToken struct {
	ID         string
	UserID     string
	SecretHash []byte
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *RememberToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
