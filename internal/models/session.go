package models

import "time"

// Session is an authenticated session established within a request context.
// It carries no secrets; the signed cookie is the wire form.
type Session struct {
	UserID    string
	CreatedAt time.Time
}
