// Package models holds the domain types shared by repositories and services.
package models

import "time"

// User is a registered account. Email is stored normalized (trimmed and
// lowercased). PasswordHash and PasswordSalt come from the password hasher
// and never leave the server.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
