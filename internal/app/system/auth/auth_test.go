package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, cfg auth.Config) *auth.Manager {
	t.Helper()
	if cfg.SessionKey == "" {
		cfg.SessionKey = "test-session-key-must-be-32-chars-long"
	}
	m, err := auth.NewManager(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// capture records the user seen by the wrapped handler.
func capture(got **auth.SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok {
			*got = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadStaff_FromProxyHeaders(t *testing.T) {
	m := newTestManager(t, auth.Config{})

	var got *auth.SessionUser
	req := httptest.NewRequest(http.MethodGet, "/screens/residents", nil)
	req.Header.Set("X-Staff-Id", "bhw-014")
	req.Header.Set("X-Staff-Name", "Maria Santos")
	req.Header.Set("X-Staff-Role", "Health_Worker")
	rec := httptest.NewRecorder()

	m.LoadStaff(capture(&got)).ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("no user in context")
	}
	if got.ID != "bhw-014" || got.Name != "Maria Santos" || got.Role != auth.RoleHealthWorker {
		t.Errorf("user = %+v", got)
	}
	if got.SessionID == "" {
		t.Error("no console session id assigned")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("session cookie not set")
	}
}

func TestLoadStaff_SessionCarriesIdentity(t *testing.T) {
	m := newTestManager(t, auth.Config{})

	var first, second *auth.SessionUser
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-Id", "clerk-2")
	req.Header.Set("X-Staff-Role", "clerk")
	rec := httptest.NewRecorder()
	m.LoadStaff(capture(&first)).ServeHTTP(rec, req)

	// Second request: no headers, only the cookie.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	m.LoadStaff(capture(&second)).ServeHTTP(httptest.NewRecorder(), req2)

	if second == nil {
		t.Fatal("identity not restored from session")
	}
	if second.ID != "clerk-2" || second.Role != auth.RoleClerk {
		t.Errorf("restored user = %+v", second)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q -> %q", first.SessionID, second.SessionID)
	}
}

func TestLoadStaff_NewStaffGetsNewSession(t *testing.T) {
	m := newTestManager(t, auth.Config{})

	var first, second *auth.SessionUser
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-Id", "a")
	rec := httptest.NewRecorder()
	m.LoadStaff(capture(&first)).ServeHTTP(rec, req)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("X-Staff-Id", "b")
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	m.LoadStaff(capture(&second)).ServeHTTP(httptest.NewRecorder(), req2)

	if first.SessionID == second.SessionID {
		t.Error("different staff member reused the console session id")
	}
}

func TestLoadStaff_DevFallback(t *testing.T) {
	m := newTestManager(t, auth.Config{DevStaffID: "dev", DevStaffRole: "Admin"})

	var got *auth.SessionUser
	m.LoadStaff(capture(&got)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.ID != "dev" || !got.HasRole(auth.RoleAdmin) {
		t.Errorf("dev user = %+v", got)
	}
}

func TestLoadStaff_CustomHeaders(t *testing.T) {
	m := newTestManager(t, auth.Config{IDHeader: "X-Remote-User", RoleHeader: "X-Remote-Role"})

	var got *auth.SessionUser
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Remote-User", "wo-3")
	req.Header.Set("X-Remote-Role", "waste_officer")
	m.LoadStaff(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "wo-3" || got.Role != auth.RoleWasteOfficer {
		t.Errorf("user = %+v", got)
	}
}

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"staff", &auth.SessionUser{ID: "bhw-1", Role: auth.RoleHealthWorker}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := auth.RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/screens/", nil)
			if tt.user != nil {
				req = auth.WithUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewManager_RandomKeyWhenUnset(t *testing.T) {
	m, err := auth.NewManager(auth.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager without key: %v", err)
	}
	if m == nil {
		t.Fatal("nil manager")
	}
}

func TestHasRole(t *testing.T) {
	var nilUser *auth.SessionUser
	if nilUser.HasRole(auth.RoleAdmin) {
		t.Error("nil user has a role")
	}
	u := &auth.SessionUser{Role: "admin"}
	if !u.HasRole(auth.RoleClerk, "ADMIN") {
		t.Error("HasRole is case-sensitive")
	}
}

func TestWithUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/screens/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Fatal("CurrentUser on a bare request = ok")
	}

	u := &auth.SessionUser{ID: "wo-3", Role: auth.RoleWasteOfficer}
	got, ok := auth.CurrentUser(auth.WithUser(req, u))
	if !ok || got != u {
		t.Errorf("CurrentUser = %v, %v", got, ok)
	}

	if _, ok := auth.CurrentUser(auth.WithUser(req, nil)); ok {
		t.Error("nil user reported as present")
	}
}
