// Package auth carries the staff identity asserted by the upstream auth
// proxy into request contexts. The console never authenticates anyone
// itself: it trusts the proxy headers, caches them in a signed cookie
// session, and tags the session with a console session id used to key
// mounted screens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	DefaultSessionName = "barangayhub-session"

	DefaultIDHeader   = "X-Staff-Id"
	DefaultNameHeader = "X-Staff-Name"
	DefaultRoleHeader = "X-Staff-Role"

	staffIDKey   = "staff_id"
	staffNameKey = "staff_name"
	staffRoleKey = "staff_role"
	sessionIDKey = "console_session_id"
)

// Staff roles recognised by the catalog's scoping rules.
const (
	RoleAdmin        = "admin"
	RoleHealthWorker = "health_worker"
	RoleWasteOfficer = "waste_officer"
	RoleClerk        = "clerk"
)

// SessionUser is the staff member behind a request.
type SessionUser struct {
	ID   string
	Name string
	Role string

	// SessionID identifies the console session (one browser), not the
	// staff member. Mounted screens are keyed by it.
	SessionID string
}

// HasRole reports whether the user holds one of roles (case-insensitive).
func (u *SessionUser) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if strings.EqualFold(u.Role, r) {
			return true
		}
	}
	return false
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the staff member for r, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser stores u as the current staff member of the request.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Config configures a Manager. Empty header names select the defaults.
type Config struct {
	SessionKey  string
	SessionName string
	Domain      string
	Secure      bool

	IDHeader   string
	NameHeader string
	RoleHeader string

	// DevStaffID, when set, is used for requests that carry no proxy
	// headers and no session. Only for local development.
	DevStaffID   string
	DevStaffRole string
}

// Manager reads staff identity and maintains the console session.
type Manager struct {
	store *sessions.CookieStore
	name  string
	cfg   Config
	log   *zap.Logger
}

// NewManager builds the cookie store. Without a session key a random one
// is generated, which means sessions do not survive a restart.
func NewManager(cfg Config, logger *zap.Logger) (*Manager, error) {
	key := []byte(cfg.SessionKey)
	switch {
	case len(key) == 0:
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("auth: could not generate a session key")
		}
		logger.Warn("no session key configured; using a random key for this process")
	case len(key) < 32:
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionName == "" {
		cfg.SessionName = DefaultSessionName
	}
	if cfg.IDHeader == "" {
		cfg.IDHeader = DefaultIDHeader
	}
	if cfg.NameHeader == "" {
		cfg.NameHeader = DefaultNameHeader
	}
	if cfg.RoleHeader == "" {
		cfg.RoleHeader = DefaultRoleHeader
	}
	if cfg.DevStaffID != "" {
		logger.Warn("development staff identity enabled",
			zap.String("staff_id", cfg.DevStaffID),
			zap.String("role", cfg.DevStaffRole))
	}

	return &Manager{store: store, name: cfg.SessionName, cfg: cfg, log: logger}, nil
}

// LoadStaff resolves the staff member for each request: proxy headers
// first, then the cached session, then the development identity. The
// session is created or refreshed as needed.
func (m *Manager) LoadStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			// Tampered or signed with an old key; start over.
			m.log.Debug("discarding unreadable session", zap.Error(err))
		}

		u := &SessionUser{
			ID:   strings.TrimSpace(r.Header.Get(m.cfg.IDHeader)),
			Name: strings.TrimSpace(r.Header.Get(m.cfg.NameHeader)),
			Role: strings.ToLower(strings.TrimSpace(r.Header.Get(m.cfg.RoleHeader))),
		}
		if u.ID == "" {
			u.ID = getString(sess, staffIDKey)
			u.Name = getString(sess, staffNameKey)
			u.Role = getString(sess, staffRoleKey)
		}
		if u.ID == "" && m.cfg.DevStaffID != "" {
			u.ID = m.cfg.DevStaffID
			u.Name = "Development Staff"
			u.Role = strings.ToLower(m.cfg.DevStaffRole)
		}
		if u.ID == "" {
			next.ServeHTTP(w, r)
			return
		}

		dirty := false
		u.SessionID = getString(sess, sessionIDKey)
		if u.SessionID == "" || getString(sess, staffIDKey) != u.ID {
			// A different staff member on this browser gets fresh screens.
			u.SessionID = uuid.NewString()
			sess.Values[sessionIDKey] = u.SessionID
			dirty = true
		}
		for k, v := range map[string]string{staffIDKey: u.ID, staffNameKey: u.Name, staffRoleKey: u.Role} {
			if getString(sess, k) != v {
				sess.Values[k] = v
				dirty = true
			}
		}
		if dirty {
			if err := sess.Save(r, w); err != nil {
				m.log.Warn("failed to save console session", zap.Error(err))
			}
		}

		next.ServeHTTP(w, WithUser(r, u))
	})
}

// RequireStaff rejects requests without a staff identity.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			http.Error(w, "staff identity required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getString(s *sessions.Session, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
