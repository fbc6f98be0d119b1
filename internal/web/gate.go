package web

import "net/http"

type route struct {
	method string
	path   string
}

// Policy is the access allow-list. Every route is protected unless it was
// explicitly opened, so forgetting to register a new route fails closed.
type Policy struct {
	open map[route]struct{}
}

func NewPolicy() *Policy {
	return &Policy{open: make(map[route]struct{})}
}

// Allow opens method+path to anonymous callers. Exact match only.
func (p *Policy) Allow(method, path string) *Policy {
	p.open[route{method: method, path: path}] = struct{}{}
	return p
}

func (p *Policy) Open(method, path string) bool {
	_, ok := p.open[route{method: method, path: path}]
	return ok
}

// DefaultPolicy opens registration, login and the health probe. Everything
// else requires an authenticated user.
func DefaultPolicy() *Policy {
	return NewPolicy().
		Allow(http.MethodGet, "/healthz").
		Allow(http.MethodPost, "/users").
		Allow(http.MethodPost, "/session")
}

// Gate resolves the caller's identity once per request, stores it in the
// context and enforces the policy. Unauthenticated requests to protected
// routes never reach their handler.
func (h *Handlers) Gate(policy *Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := NewCookieState(w, r, h.secureCookies)
			user, err := h.sessions.CurrentUser(r.Context(), st)
			if err != nil {
				h.renderError(w, r, err)
				return
			}
			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			} else if !policy.Open(r.Method, r.URL.Path) {
				respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"}, h.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
