// Package ratelimit bounds repeated operations per key; the session manager
// uses it to cap login attempts per email.
package ratelimit

import "context"

// Limiter reports whether one more attempt under key is allowed right now.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) bool { return true }

// Unlimited returns a Limiter that always allows. Used in tests and when
// limiting is disabled.
func Unlimited() Limiter { return unlimited{} }
