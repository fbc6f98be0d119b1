// Package web is the HTTP edge: cookie plumbing, the access gate, JSON
// handlers and the router. It owns response shapes; the services underneath
// know nothing about HTTP.
package web

import (
	"net/http"
	"time"

	"github.com/dkarklis/gatehouse/internal/services"
)

// CookieState adapts one request/response pair to services.ClientState.
// Reads come from the request, writes go straight to the response headers.
type CookieState struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

func NewCookieState(w http.ResponseWriter, r *http.Request, secure bool) *CookieState {
	return &CookieState{w: w, r: r, secure: secure}
}

var _ services.ClientState = (*CookieState)(nil)

func (c *CookieState) Get(name string) (string, bool) {
	ck, err := c.r.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Set writes a cookie with the hardened attribute set. ttl <= 0 produces a
// browser-session cookie; the envelope inside carries its own expiry.
func (c *CookieState) Set(name, value string, ttl time.Duration) {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(c.w, ck)
}

func (c *CookieState) Clear(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
