package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/logging"
	"github.com/dkarklis/gatehouse/internal/models"
	"github.com/dkarklis/gatehouse/internal/services"
)

// Handlers carries the JSON endpoints and their dependencies.
type Handlers struct {
	creds         *services.CredentialService
	sessions      *services.SessionManager
	logger        logging.Logger
	secureCookies bool
}

func NewHandlers(creds *services.CredentialService, sessions *services.SessionManager,
	logger logging.Logger, secureCookies bool) *Handlers {
	return &Handlers{
		creds:         creds,
		sessions:      sessions,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

func (h *Handlers) state(w http.ResponseWriter, r *http.Request) *CookieState {
	return NewCookieState(w, r, h.secureCookies)
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type changePasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors map[string]string `json:"errors"`
}

func presentUser(u *models.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email}
}

func respondJSON(w http.ResponseWriter, code int, payload any, logger logging.Logger) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(context.Background(), "failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		logger.Error(context.Background(), "failed to write HTTP response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger logging.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"}, logger)
		return false
	}
	return true
}

// renderError maps service errors onto the JSON contract. Anything without
// an explicit mapping becomes an opaque 500; details stay in the log.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, validationBody{Errors: verr.Fields}, h.logger)
	case errors.Is(err, common.ErrDuplicateEmail):
		respondJSON(w, http.StatusUnprocessableEntity,
			validationBody{Errors: map[string]string{"email": "is already taken"}}, h.logger)
	case errors.Is(err, common.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid email or password"}, h.logger)
	case errors.Is(err, common.ErrRateLimited):
		respondJSON(w, http.StatusTooManyRequests,
			errorBody{Error: "too many login attempts, try again later"}, h.logger)
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrNotFound):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"}, h.logger)
	default:
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"}, h.logger)
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.creds.Register(r.Context(), services.RegistrationInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, presentUser(user), h.logger)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.sessions.Login(r.Context(), h.state(w, r), req.Email, req.Password, req.Remember)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user logged in", "user_id", user.ID, "remember", req.Remember)
	respondJSON(w, http.StatusOK, presentUser(user), h.logger)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context(), h.state(w, r)); err != nil {
		h.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"}, h.logger)
		return
	}
	respondJSON(w, http.StatusOK, presentUser(user), h.logger)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"}, h.logger)
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	err := h.creds.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.Password, req.PasswordConfirmation)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	// Every remember token is revoked now; drop this client's stale copy.
	// The session cookie stays, so this device remains signed in.
	h.state(w, r).Clear(services.RememberCookieName)

	h.logger.Info(r.Context(), "password changed", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"}, h.logger)
		return
	}

	if err := h.creds.DeleteAccount(r.Context(), user.ID); err != nil {
		h.renderError(w, r, err)
		return
	}

	st := h.state(w, r)
	st.Clear(services.SessionCookieName)
	st.Clear(services.RememberCookieName)

	h.logger.Info(r.Context(), "account deleted", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
