package services

import (
	"context"
	"errors"
	"time"

	"github.com/dkarklis/gatehouse/internal/auth"
	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/models"
	"github.com/dkarklis/gatehouse/internal/ratelimit"
)

// Cookie names the session manager reads and writes through ClientState.
const (
	SessionCookieName  = "gatehouse_session"
	RememberCookieName = "gatehouse_remember"
)

// ClientState abstracts the per-request cookie jar. Implementations decide
// transport attributes (HttpOnly, Secure, SameSite); ttl <= 0 means a
// browser-session cookie.
type ClientState interface {
	Get(name string) (string, bool)
	Set(name, value string, ttl time.Duration)
	Clear(name string)
}

// SessionManager moves a request between Anonymous and Authenticated using
// signed cookies plus the credential and token services. Nothing is shared
// across requests except through the stores.
type SessionManager struct {
	creds   *CredentialService
	tokens  *TokenService
	limiter ratelimit.Limiter

	secretKey   []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewSessionManager(creds *CredentialService, tokens *TokenService, limiter ratelimit.Limiter,
	secretKey []byte, sessionTTL, rememberTTL time.Duration) *SessionManager {
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	return &SessionManager{
		creds:       creds,
		tokens:      tokens,
		limiter:     limiter,
		secretKey:   secretKey,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// SignIn establishes a session for user: a signed session cookie scoped to
// the browser session, plus a persistent remember token when remember is
// true.
func (m *SessionManager) SignIn(ctx context.Context, st ClientState, user *models.User, remember bool) (*models.Session, error) {
	envelope, err := auth.NewSessionEnvelope(user.ID, m.secretKey, m.sessionTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	st.Set(SessionCookieName, envelope, 0)

	if remember {
		issued, err := m.tokens.Issue(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		rememberEnv, err := auth.NewRememberEnvelope(user.ID, issued.ID, issued.Secret, m.secretKey, m.rememberTTL)
		if err != nil {
			return nil, common.ErrInternal
		}
		st.Set(RememberCookieName, rememberEnv, m.rememberTTL)
	}

	return &models.Session{UserID: user.ID, CreatedAt: time.Now()}, nil
}

// SignOut revokes the remember token named by the cookie (when present and
// well-formed) and clears both cookies. Signing out an anonymous state is a
// no-op; signing out twice is safe.
func (m *SessionManager) SignOut(ctx context.Context, st ClientState) error {
	if envelope, ok := st.Get(RememberCookieName); ok {
		if userID, tokenID, _, err := auth.ParseRememberEnvelope(envelope, m.secretKey); err == nil {
			if err := m.tokens.Revoke(ctx, userID, tokenID); err != nil {
				return err
			}
		}
	}
	st.Clear(SessionCookieName)
	st.Clear(RememberCookieName)
	return nil
}

// CurrentUser resolves the authenticated user, if any: session cookie
// first, then the remember cookie, which on success re-establishes the
// session cookie (sliding renewal). Stale or tampered cookies are cleared
// and the request proceeds anonymous: (nil, nil).
//
// The HTTP gate calls this once per request and caches the result in the
// request context.
func (m *SessionManager) CurrentUser(ctx context.Context, st ClientState) (*models.User, error) {
	if envelope, ok := st.Get(SessionCookieName); ok {
		if userID, err := auth.ParseSessionEnvelope(envelope, m.secretKey); err == nil {
			user, err := m.creds.FindByID(ctx, userID)
			if err == nil {
				return user, nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrInternal
			}
		}
		// invalid envelope or the user is gone
		st.Clear(SessionCookieName)
	}

	envelope, ok := st.Get(RememberCookieName)
	if !ok {
		return nil, nil
	}
	userID, tokenID, secret, err := auth.ParseRememberEnvelope(envelope, m.secretKey)
	if err != nil {
		st.Clear(RememberCookieName)
		return nil, nil
	}
	user, err := m.tokens.Validate(ctx, userID, tokenID, secret)
	if err != nil {
		if errors.Is(err, common.ErrTokenInvalid) {
			st.Clear(RememberCookieName)
			return nil, nil
		}
		return nil, common.ErrInternal
	}

	sessionEnv, err := auth.NewSessionEnvelope(user.ID, m.secretKey, m.sessionTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	st.Set(SessionCookieName, sessionEnv, 0)
	return user, nil
}

// Login is the end-to-end flow: rate limit, authenticate, sign in. Every
// failed attempt costs the caller the same generic error.
func (m *SessionManager) Login(ctx context.Context, st ClientState, email, plaintext string, remember bool) (*models.User, error) {
	if !m.limiter.Allow(ctx, "login:"+normalizeEmail(email)) {
		return nil, common.ErrRateLimited
	}
	user, err := m.creds.Authenticate(ctx, email, plaintext)
	if err != nil {
		return nil, err
	}
	if _, err := m.SignIn(ctx, st, user, remember); err != nil {
		return nil, err
	}
	return user, nil
}
