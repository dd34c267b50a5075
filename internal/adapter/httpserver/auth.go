package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

const sessionCookieName = "session"

// SessionData is the authenticated principal carried on the request context.
type SessionData struct {
	Email     string
	Role      string
	ExpiresAt time.Time
}

// SessionManager issues and verifies HMAC-signed session cookies. Sessions
// are stateless; revocation is expiry-only.
type SessionManager struct {
	secret []byte
	cfg    config.Config
}

func NewSessionManager(cfg config.Config) *SessionManager {
	return &SessionManager{secret: []byte(cfg.SessionSecret), cfg: cfg}
}

// Issue builds a signed session value for the given principal.
func (sm *SessionManager) Issue(email, role string) string {
	expiresAt := time.Now().Add(sm.cfg.SessionTTL)
	payload := fmt.Sprintf("%s|%s|%d", email, role, expiresAt.Unix())
	return payload + "." + sm.sign(payload)
}

func (sm *SessionManager) sign(payload string) string {
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(payload))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature and expiry of a session value. The payload may
// itself contain dots (emails usually do), so the signature is everything
// after the last dot.
func (sm *SessionManager) Verify(value string) (SessionData, error) {
	i := strings.LastIndex(value, ".")
	if i < 0 {
		return SessionData{}, fmt.Errorf("%w: malformed session", domain.ErrUnauthorized)
	}
	payload, sig := value[:i], value[i+1:]
	got, err := base64.URLEncoding.DecodeString(sig)
	if err != nil {
		return SessionData{}, fmt.Errorf("%w: malformed session signature", domain.ErrUnauthorized)
	}
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(payload))
	if !hmac.Equal(mac.Sum(nil), got) {
		return SessionData{}, fmt.Errorf("%w: invalid session signature", domain.ErrUnauthorized)
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return SessionData{}, fmt.Errorf("%w: malformed session payload", domain.ErrUnauthorized)
	}
	exp, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return SessionData{}, fmt.Errorf("%w: malformed session expiry", domain.ErrUnauthorized)
	}
	expiresAt := time.Unix(exp, 0)
	if time.Now().After(expiresAt) {
		return SessionData{}, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}
	return SessionData{Email: parts[0], Role: parts[1], ExpiresAt: expiresAt}, nil
}

// SetCookie writes the session cookie.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   !sm.cfg.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sm.cfg.SessionTTL / time.Second),
	})
}

// ClearCookie expires the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   !sm.cfg.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

type sessionKey struct{}

// SessionFrom returns the session attached by RequireAdmin, if any.
func SessionFrom(ctx context.Context) (SessionData, bool) {
	sd, ok := ctx.Value(sessionKey{}).(SessionData)
	return sd, ok
}

// RequireAdmin guards admin routes; non-admin sessions are rejected.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized))
			return
		}
		sd, err := sm.Verify(cookie.Value)
		if err != nil {
			sm.ClearCookie(w)
			writeError(w, err)
			return
		}
		if sd.Role != "admin" {
			writeError(w, fmt.Errorf("%w: admin access required", domain.ErrUnauthorized))
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sd)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
