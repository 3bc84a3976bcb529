package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"github.com/dalemusser/barangayhub/internal/testutil"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "barangay_hub",
		APIBaseURL:          "http://records.local/api",
		APITimeout:          15 * time.Second,
		SearchDebounce:      400 * time.Millisecond,
		PageSize:            10,
		CacheTTL:            30 * time.Second,
		ScreenIdleTimeout:   30 * time.Minute,
		ScreenSweepInterval: time.Minute,
		DevStaffID:          "dev-admin",
		DevStaffRole:        auth.RoleAdmin,
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"relative api url", func(c *AppConfig) { c.APIBaseURL = "/api" }, "api_base_url"},
		{"ftp api url", func(c *AppConfig) { c.APIBaseURL = "ftp://records.local" }, "api_base_url"},
		{"partial client credentials", func(c *AppConfig) { c.APIClientID = "console" }, "must be set together"},
		{"full client credentials", func(c *AppConfig) {
			c.APIClientID, c.APIClientSecret, c.APITokenURL = "console", "s3cret", "http://auth.local/token"
		}, ""},
		{"page size zero", func(c *AppConfig) { c.PageSize = 0 }, "page_size"},
		{"page size too large", func(c *AppConfig) { c.PageSize = 10000 }, "page_size"},
		{"negative debounce", func(c *AppConfig) { c.SearchDebounce = -time.Second }, "search_debounce"},
		{"zero sweep", func(c *AppConfig) { c.ScreenSweepInterval = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateAppConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewServicesWiresDefaults(t *testing.T) {
	cfg := validConfig()
	svc, err := newServices(cfg, clock.Real(), zap.NewNop())
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}
	if svc.API.BaseURL() != cfg.APIBaseURL {
		t.Errorf("api base = %q", svc.API.BaseURL())
	}
	if n := len(svc.Catalog.Entries(&auth.SessionUser{ID: "a", Role: auth.RoleAdmin})); n != 10 {
		t.Errorf("admin entries = %d, want 10", n)
	}
	if svc.Screens.Len() != 0 {
		t.Errorf("registry not empty: %d", svc.Screens.Len())
	}

	cfg.APIBaseURL = "::bad"
	if _, err := newServices(cfg, clock.Real(), zap.NewNop()); err == nil {
		t.Error("bad base URL accepted")
	}
}

func TestRouter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	api := testutil.NewFakeAPI(t)

	cfg := validConfig()
	cfg.APIBaseURL = api.URL
	svc, err := newServices(cfg, clock.Real(), zap.NewNop())
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}
	t.Cleanup(svc.Screens.CloseAll)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, Services: svc}
	h, err := newRouter(cfg, deps, false, zap.NewNop())
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("root redirects to screens", func(t *testing.T) {
		rec := get("/")
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/screens/" {
			t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("health", func(t *testing.T) {
		rec := get("/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"api":"reachable"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("screen index for dev staff", func(t *testing.T) {
		rec := get("/screens/?format=json")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Screens []struct {
				Name string `json:"name"`
			} `json:"screens"`
		}
		if err := jsoniter.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Screens) != 10 {
			t.Errorf("screens = %d, want 10", len(body.Screens))
		}
	})

	t.Run("opening a screen mounts it once", func(t *testing.T) {
		for range 2 {
			if rec := get("/screens/households/state"); rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
		}
		// Each request without a cookie is a new console session.
		if n := svc.Screens.Len(); n != 2 {
			t.Errorf("open screens = %d, want 2", n)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get("/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "barangayhub_") {
			t.Error("metrics missing app namespace")
		}
	})
}
