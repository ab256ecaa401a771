// Package auth decides whether a caller is a privileged viewer. A caller is
// privileged when it holds a signed admin session cookie or presents the
// configured admin token as a bearer credential.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/vitrine/internal/app/system/ratelimit"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultSessionName is the cookie name used when none is configured.
	DefaultSessionName = "vitrine-session"

	privilegedKey = "privileged"
	signedInAtKey = "signed_in_at"
)

// ErrInvalidToken is returned by SignIn when the token does not match.
var ErrInvalidToken = errors.New("auth: invalid admin token")

// ErrNoAdminToken is returned when no admin token hash is configured, so
// nobody can become privileged.
var ErrNoAdminToken = errors.New("auth: admin token not configured")

type ctxKey string

const privilegedCtxKey ctxKey = "privileged"

// SessionManager owns the cookie store and the admin token hash.
type SessionManager struct {
	store     *sessions.CookieStore
	name      string
	tokenHash []byte
	bearer    *ratelimit.Limiter // failed bearer attempts per client IP
	log       *zap.Logger
}

// NewSessionManager builds the cookie store. The `secure` flag controls
// whether cookies are marked Secure and which SameSite mode is used: in
// local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, sessionName, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if sessionName == "" {
		sessionName = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:  store,
		name:   sessionName,
		bearer: ratelimit.NewSignIn(),
		log:    logger,
	}, nil
}

// SetBearerLimiter replaces the limiter that caps failed bearer attempts
// per client IP. A nil limiter is ignored.
func (sm *SessionManager) SetBearerLimiter(l *ratelimit.Limiter) {
	if l != nil {
		sm.bearer = l
	}
}

// SetAdminTokenHash installs the bcrypt hash of the admin token. An empty
// hash disables privileged access.
func (sm *SessionManager) SetAdminTokenHash(hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		sm.tokenHash = nil
		return nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("auth: admin_token_hash is not a bcrypt hash: %w", err)
	}
	sm.tokenHash = []byte(hash)
	return nil
}

// CheckToken reports whether token matches the configured admin token.
func (sm *SessionManager) CheckToken(token string) bool {
	if len(sm.tokenHash) == 0 || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(sm.tokenHash, []byte(token)) == nil
}

// HashToken returns a bcrypt hash suitable for admin_token_hash.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SignIn verifies token and stores the privileged flag in the session.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, token string) error {
	if len(sm.tokenHash) == 0 {
		return ErrNoAdminToken
	}
	if !sm.CheckToken(token) {
		return ErrInvalidToken
	}
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[privilegedKey] = true
	sess.Values[signedInAtKey] = time.Now().UTC().Unix()
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, privilegedKey)
	delete(sess.Values, signedInAtKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Load marks the request privileged when the session or the bearer token
// says so. It never rejects a request.
func (sm *SessionManager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.fromSession(r) || sm.fromBearer(r) {
			r = r.WithContext(WithPrivileged(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrivileged rejects non-privileged callers with 401.
// Must run after Load.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsPrivileged(r) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="vitrine"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsPrivileged reports whether Load marked the request privileged.
func IsPrivileged(r *http.Request) bool {
	return IsPrivilegedContext(r.Context())
}

// IsPrivilegedContext is IsPrivileged for a bare context.
func IsPrivilegedContext(ctx context.Context) bool {
	v, _ := ctx.Value(privilegedCtxKey).(bool)
	return v
}

// WithPrivileged returns ctx marked as privileged.
func WithPrivileged(ctx context.Context) context.Context {
	return context.WithValue(ctx, privilegedCtxKey, true)
}

func (sm *SessionManager) fromSession(r *http.Request) bool {
	if len(sm.tokenHash) == 0 {
		return false
	}
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return false
	}
	ok, _ := sess.Values[privilegedKey].(bool)
	return ok
}

func (sm *SessionManager) fromBearer(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return false
	}
	// Once an IP has spent its failure budget no token is compared, the
	// valid one included, until the window expires.
	ip := ratelimit.ClientIP(r)
	if sm.bearer.Remaining(ip) == 0 {
		sm.log.Warn("bearer attempt refused: rate limited", zap.String("ip", ip))
		return false
	}
	if sm.CheckToken(strings.TrimSpace(h[len(prefix):])) {
		sm.bearer.Reset(ip)
		return true
	}
	sm.bearer.Allow(ip)
	return false
}
