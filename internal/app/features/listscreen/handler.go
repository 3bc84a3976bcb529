// internal/app/features/listscreen/handler.go
package listscreen

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/barangayhub/internal/app/features/catalog"
	screenprefsstore "github.com/dalemusser/barangayhub/internal/app/store/screenprefs"
	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
	"github.com/dalemusser/barangayhub/internal/app/system/timeouts"
	"github.com/dalemusser/barangayhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrefsStore persists how each staff member leaves a screen.
// *screenprefsstore.Store satisfies it.
type PrefsStore interface {
	Get(ctx context.Context, userID, screen string) (models.ScreenPrefs, error)
	Save(ctx context.Context, p models.ScreenPrefs) error
	Delete(ctx context.Context, userID, screen string) error
}

// Handler serves the list screens of the staff console.
type Handler struct {
	Catalog  *catalog.Catalog
	Registry *screens.Registry
	Prefs    PrefsStore
	Log      *zap.Logger
}

// NewHandler constructs a list screen Handler. prefs may be nil, in which
// case screens always open with their defaults.
func NewHandler(cat *catalog.Catalog, reg *screens.Registry, prefs PrefsStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Catalog:  cat,
		Registry: reg,
		Prefs:    prefs,
		Log:      logger,
	}
}

// sessionKey identifies the console session that owns mounted screens.
func sessionKey(u *auth.SessionUser) string {
	if u.SessionID != "" {
		return u.SessionID
	}
	return u.ID
}

// open returns the requested screen, mounting it on first use. On
// failure it has already written the response.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) (screens.Screen, *auth.SessionUser, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "staff identity required", http.StatusUnauthorized)
		return nil, nil, false
	}
	name := chi.URLParam(r, "screen")
	session := sessionKey(user)

	if s, ok := h.Registry.Get(session, name); ok {
		return s, user, true
	}

	prefs := h.loadPrefs(r.Context(), user, name)
	s, err := h.Registry.Open(session, name, h.Catalog.Builder(name, user, prefs))
	switch {
	case err == nil:
		return s, user, true
	case errors.Is(err, screens.ErrUnknownScreen):
		http.NotFound(w, r)
	case errors.Is(err, catalog.ErrForbidden):
		http.Error(w, "This screen is not available for your role.", http.StatusForbidden)
	case errors.Is(err, screens.ErrRegistryClosed):
		http.Error(w, "The console is shutting down.", http.StatusServiceUnavailable)
	default:
		h.Log.Error("mount screen failed", zap.String("screen", name), zap.Error(err))
		http.Error(w, "Unable to open screen.", http.StatusInternalServerError)
	}
	return nil, nil, false
}

func (h *Handler) loadPrefs(ctx context.Context, user *auth.SessionUser, name string) *models.ScreenPrefs {
	if h.Prefs == nil {
		return nil
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "load screen prefs")
	defer cancel()

	p, err := h.Prefs.Get(ctx, user.ID, name)
	if errors.Is(err, screenprefsstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		h.Log.Warn("load screen prefs failed",
			zap.String("user_id", user.ID), zap.String("screen", name), zap.Error(err))
		return nil
	}
	return &p
}

// savePrefs records the screen's current page size, filter and sort.
// Failures are logged; the screen keeps working without them.
func (h *Handler) savePrefs(r *http.Request, user *auth.SessionUser, s screens.Screen) {
	if h.Prefs == nil {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save screen prefs")
	defer cancel()

	q := s.Query()
	err := h.Prefs.Save(ctx, models.ScreenPrefs{
		UserID:    user.ID,
		Screen:    s.Name(),
		PageSize:  q.PageSize,
		Filter:    string(q.Filter),
		SortBy:    q.Sort.By,
		SortOrder: string(q.Sort.Order),
	})
	if err != nil {
		h.Log.Warn("save screen prefs failed",
			zap.String("user_id", user.ID), zap.String("screen", s.Name()), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
