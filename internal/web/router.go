package web

import (
	"net/http"

	"github.com/dkarklis/gatehouse/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface. The gate runs after the access log
// and recovery middleware, so denied requests are still logged.
func NewRouter(h *Handlers, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(h.Gate(DefaultPolicy()))

	r.Get("/healthz", h.Health)

	r.Post("/users", h.Register)
	r.Post("/session", h.Login)
	r.Delete("/session", h.Logout)

	r.Get("/me", h.Me)
	r.Put("/me/password", h.ChangePassword)
	r.Delete("/me", h.DeleteAccount)

	return r
}
