// Package preview manages the draft preview session. An editor enters
// preview with the shared preview secret; the session cookie then marks
// every request so content queries overlay drafts on published documents.
package preview

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/content"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown sessionErrorType = iota
	sessionErrExpired                  // timestamp expired - normal
	sessionErrTampered                 // MAC invalid - potential attack
	sessionErrCorrupted                // decode/decrypt failed - corruption or key rotation
	sessionErrBackend                  // store/backend failure
)

const (
	previewKey   = "preview"
	startedAtKey = "preview_started_at"
)

// DefaultSessionName is the cookie name used when none is configured.
const DefaultSessionName = "stratasite-preview"

// Config configures a Manager.
type Config struct {
	// Secret is the shared preview secret. Empty disables preview.
	Secret string

	SessionKey string // signing key, ≥32 chars in production
	Name       string // cookie name, DefaultSessionName if empty
	Domain     string // cookie domain, empty means current host
	MaxAge     time.Duration
	Secure     bool // Secure cookies; also makes weak keys fatal
}

// ConfigError is returned when preview configuration is invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Manager holds the preview cookie store.
type Manager struct {
	store  *sessions.CookieStore
	logger *zap.Logger
	name   string
	secret string
}

// NewManager creates a Manager. It returns an error when preview is enabled
// and the session key is empty, or too weak for production.
func NewManager(cfg Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = DefaultSessionName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}

	m := &Manager{logger: logger, name: cfg.Name, secret: cfg.Secret}
	if cfg.Secret == "" {
		logger.Info("draft preview disabled: no preview secret configured")
		return m, nil
	}

	if cfg.SessionKey == "" {
		return nil, &ConfigError{Message: "session key is empty; provide ≥32 random chars to enable preview"}
	}
	isWeak := len(cfg.SessionKey) < 32 || isDefaultKey(cfg.SessionKey)
	if cfg.Secure {
		if isWeak {
			return nil, &ConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(cfg.SessionKey)),
			zap.Bool("is_default", isDefaultKey(cfg.SessionKey)))
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	m.store = store

	logger.Info("draft preview enabled",
		zap.Bool("secure", cfg.Secure),
		zap.String("name", cfg.Name),
		zap.Duration("max_age", cfg.MaxAge))
	return m, nil
}

// Enabled reports whether a preview secret is configured.
func (m *Manager) Enabled() bool {
	return m.store != nil
}

// SessionName returns the configured cookie name.
func (m *Manager) SessionName() string {
	return m.name
}

// CheckSecret compares s with the configured secret in constant time.
func (m *Manager) CheckSecret(s string) bool {
	if !m.Enabled() || s == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(m.secret)) == 1
}

// Enable starts a preview session on the response.
func (m *Manager) Enable(w http.ResponseWriter, r *http.Request) error {
	if !m.Enabled() {
		return &ConfigError{Message: "preview is not enabled"}
	}
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		sess, _ = m.store.New(r, m.name)
	}
	sess.Values[previewKey] = true
	sess.Values[startedAtKey] = time.Now().Unix()
	return sess.Save(r, w)
}

// Disable ends the preview session, if any. A cookie that no longer
// decodes is expired as well.
func (m *Manager) Disable(w http.ResponseWriter, r *http.Request) {
	if !m.Enabled() {
		return
	}
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		sess, _ = m.store.New(r, m.name)
	}
	delete(sess.Values, previewKey)
	delete(sess.Values, startedAtKey)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// Middleware marks requests carrying a valid preview session so that
// content queries made with the request context include drafts.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(m.name); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r, m.name)
		if err != nil {
			m.logSessionError(r, err)
		}
		if on, _ := sess.Values[previewKey].(bool); on {
			w.Header().Set("Cache-Control", "private, no-store")
			r = r.WithContext(content.WithPreview(r.Context(), true))
		}
		next.ServeHTTP(w, r)
	})
}

// Active reports whether the request is in preview.
func Active(r *http.Request) bool {
	return content.PreviewFrom(r.Context())
}

func (m *Manager) logSessionError(r *http.Request, err error) {
	errType, errCategory := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		m.logger.Debug("preview session expired",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	case sessionErrTampered:
		m.logger.Warn("preview session MAC validation failed (possible tampering)",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()))
	case sessionErrCorrupted:
		m.logger.Info("preview session decode failed",
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	default:
		m.logger.Warn("preview session error",
			zap.Error(err),
			zap.String("category", errCategory),
			zap.String("path", r.URL.Path))
	}
}

// isDefaultKey checks if the session key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a session/cookie error for appropriate logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}

		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "decrypt"):
			return sessionErrCorrupted, "decrypt_failed"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
