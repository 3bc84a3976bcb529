// internal/app/features/listscreen/views.go
package listscreen

import (
	"net/http"
	"strings"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// navItem is one entry in the console menu.
type navItem struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"-"`
}

type pageData struct {
	Title    string
	UserName string
	Role     string
	Nav      []navItem
	BaseURL  string
	View     screens.View
}

func (h *Handler) nav(user *auth.SessionUser, active string) []navItem {
	entries := h.Catalog.Entries(user)
	items := make([]navItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, navItem{
			Name:   e.Meta.Name,
			Title:  e.Meta.Title,
			URL:    "/screens/" + e.Meta.Name + "/",
			Active: e.Meta.Name == active,
		})
	}
	return items
}

func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// ServeIndex handles GET /screens/: the screens the staff member may open.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	items := h.nav(user, "")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"screens": items})
		return
	}
	templates.Render(w, r, "screens_index", pageData{
		Title:    "Barangay console",
		UserName: user.Name,
		Role:     user.Role,
		Nav:      items,
	})
}

// ServeScreen handles GET /screens/{screen}/: the full page.
func (h *Handler) ServeScreen(w http.ResponseWriter, r *http.Request) {
	s, user, ok := h.open(w, r)
	if !ok {
		return
	}
	v := s.View()
	templates.Render(w, r, "screen_page", pageData{
		Title:    v.Title,
		UserName: user.Name,
		Role:     user.Role,
		Nav:      h.nav(user, s.Name()),
		BaseURL:  "/screens/" + chi.URLParam(r, "screen"),
		View:     v,
	})
}

// ServeRows handles GET /screens/{screen}/rows, the table partial the
// page polls while a fetch is running.
func (h *Handler) ServeRows(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	templates.RenderSnippet(w, "screen_rows", pageData{
		BaseURL: "/screens/" + chi.URLParam(r, "screen"),
		View:    s.View(),
	})
}

// ServeState handles GET /screens/{screen}/state with the rendering
// contract as JSON.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}
