// internal/app/features/listscreen/actions.go
package listscreen

import (
	"net/http"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"github.com/dalemusser/barangayhub/internal/app/system/search"
	"github.com/dalemusser/barangayhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Mutating routes answer 204 and let the page re-poll its rows.

// HandleSearch handles POST /screens/{screen}/search with the typed text
// in "q". The search is applied after the screen's debounce.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	s.SetSearchInput(search.Normalize(r.PostFormValue("q")))
	w.WriteHeader(http.StatusNoContent)
}

// HandleFlushSearch applies pending search text now (enter key).
func (h *Handler) HandleFlushSearch(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	s.FlushSearch()
	w.WriteHeader(http.StatusNoContent)
}

// HandleFilter switches the filter tab.
func (h *Handler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	s, user, ok := h.open(w, r)
	if !ok {
		return
	}
	if !s.SetFilter(listquery.FilterKey(r.PostFormValue("filter"))) {
		http.Error(w, "Unknown filter.", http.StatusBadRequest)
		return
	}
	h.savePrefs(r, user, s)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSort sets or clears (empty sort_by) the sort directive.
func (h *Handler) HandleSort(w http.ResponseWriter, r *http.Request) {
	s, user, ok := h.open(w, r)
	if !ok {
		return
	}
	srt := listquery.Sort{By: r.PostFormValue("sort_by")}
	if srt.By != "" {
		srt.Order = listquery.ParseSortOrder(r.PostFormValue("sort_order"))
	}
	if !s.SetSort(srt) {
		http.Error(w, "This column cannot be sorted.", http.StatusBadRequest)
		return
	}
	h.savePrefs(r, user, s)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePage moves to another page. A page outside the current result
// set, or a request made before it has loaded, is refused with 422.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	n := paging.ParsePage(r)
	if n < 1 {
		http.Error(w, "Invalid page.", http.StatusBadRequest)
		return
	}
	if !s.SetPage(n) {
		h.Log.Debug("page change rejected",
			zap.String("screen", chi.URLParam(r, "screen")), zap.Int("page", n))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "Page out of range.",
			"page":       n,
			"totalPages": s.View().TotalPages,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePageSize changes how many records a page holds.
func (h *Handler) HandlePageSize(w http.ResponseWriter, r *http.Request) {
	s, user, ok := h.open(w, r)
	if !ok {
		return
	}
	n := paging.ParsePageSize(r, 0)
	if n == 0 || !s.SetPageSize(n) {
		http.Error(w, "Invalid page size.", http.StatusBadRequest)
		return
	}
	h.savePrefs(r, user, s)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh re-fetches the current page.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.open(w, r)
	if !ok {
		return
	}
	s.Refresh()
	w.WriteHeader(http.StatusNoContent)
}

// HandleClose unmounts the screen for this console session.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "staff identity required", http.StatusUnauthorized)
		return
	}
	h.Registry.Close(sessionKey(user), chi.URLParam(r, "screen"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset forgets the staff member's saved preferences for the
// screen and unmounts it, so the next load starts from the defaults.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "staff identity required", http.StatusUnauthorized)
		return
	}
	name := chi.URLParam(r, "screen")
	if _, ok := h.Catalog.Lookup(name); !ok {
		http.NotFound(w, r)
		return
	}

	if h.Prefs != nil {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reset screen prefs")
		defer cancel()
		if err := h.Prefs.Delete(ctx, user.ID, name); err != nil {
			h.Log.Error("reset screen prefs failed",
				zap.String("user_id", user.ID), zap.String("screen", name), zap.Error(err))
			http.Error(w, "Unable to reset this screen.", http.StatusInternalServerError)
			return
		}
	}
	h.Registry.Close(sessionKey(user), name)
	w.WriteHeader(http.StatusNoContent)
}
