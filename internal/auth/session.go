package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

// SessionCookieName is the name of the session id cookie.
const SessionCookieName = "session"

type contextKey string

const userContextKey contextKey = "user"

// SessionStore is the slice of the repository the session manager needs.
type SessionStore interface {
	CreateSession(ctx context.Context, rec storage.SessionRecord) error
	GetSession(ctx context.Context, token string) (storage.SessionRecord, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionOptions configure cookie issuance. Secure and HTTPOnly default to
// off, matching the observed deployment; flip them in config for anything
// internet-facing. When Secret is set, the store holds an HMAC digest of the
// token instead of the cookie value itself, so a leaked database cannot be
// replayed as cookies.
type SessionOptions struct {
	MaxAge   time.Duration
	Secret   string
	Secure   bool
	HTTPOnly bool
}

// SessionManager issues and validates server-side sessions. Lifetime is a
// fixed window from issuance; nothing renews a session and no logout route
// exists, so rows die only by expiry.
type SessionManager struct {
	store SessionStore
	opts  SessionOptions
}

func NewSessionManager(store SessionStore, opts SessionOptions) *SessionManager {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	return &SessionManager{store: store, opts: opts}
}

// Issue creates a session for the user and sets the cookie. The session row
// carries the full serialized user record, hash included, exactly as the
// resolver produced it.
func (m *SessionManager) Issue(ctx context.Context, w http.ResponseWriter, user core.User) error {
	token, err := newSessionToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serialize user: %w", err)
	}

	rec := storage.SessionRecord{
		Token:     m.storageToken(token),
		UserID:    user.ID,
		UserData:  string(data),
		ExpiresAt: time.Now().Add(m.opts.MaxAge),
	}
	if err := m.store.CreateSession(ctx, rec); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.MaxAge.Seconds()),
		Secure:   m.opts.Secure,
		HttpOnly: m.opts.HTTPOnly,
	})

	slog.InfoContext(ctx, "Session issued", "user_id", user.ID, "expires_at", rec.ExpiresAt)
	return nil
}

// Current returns the authenticated user for the request, deserialized from
// the session payload unchanged. Missing cookie, unknown token and expired
// session all come back as core.ErrSessionNotFound.
func (m *SessionManager) Current(r *http.Request) (core.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return core.User{}, core.ErrSessionNotFound
	}

	rec, err := m.store.GetSession(r.Context(), m.storageToken(cookie.Value))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return core.User{}, core.ErrSessionNotFound
		}
		return core.User{}, fmt.Errorf("load session: %w", err)
	}

	if !rec.ExpiresAt.After(time.Now()) {
		return core.User{}, core.ErrSessionNotFound
	}

	var user core.User
	if err := json.Unmarshal([]byte(rec.UserData), &user); err != nil {
		return core.User{}, fmt.Errorf("deserialize session user: %w", err)
	}
	return user, nil
}

// Gate protects a route: requests without a valid session are redirected to
// /login, authenticated ones continue with the user in the request context.
func (m *SessionManager) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Current(r)
		if err != nil {
			if !errors.Is(err, core.ErrSessionNotFound) {
				slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext retrieves the authenticated user placed by Gate.
func UserFromContext(ctx context.Context) (core.User, bool) {
	user, ok := ctx.Value(userContextKey).(core.User)
	return user, ok
}

// Janitor drops expired session rows on a fixed interval until the context
// is canceled. Run it alongside the server; its return value fits errgroup.
func (m *SessionManager) Janitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := m.store.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				slog.ErrorContext(ctx, "Session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.DebugContext(ctx, "Expired sessions removed", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// storageToken maps a cookie token to its stored form.
func (m *SessionManager) storageToken(token string) string {
	if m.opts.Secret == "" {
		return token
	}
	mac := hmac.New(sha256.New, []byte(m.opts.Secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
