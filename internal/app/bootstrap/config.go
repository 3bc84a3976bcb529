// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for BarangayHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_base_url, etc.
//   - Environment variables: BARANGAYHUB_MONGO_URI, BARANGAYHUB_API_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --api_base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "barangay_hub", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "", Desc: "Session signing key (blank generates one per process)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Staff identity
	{Name: "staff_id_header", Default: auth.DefaultIDHeader, Desc: "Header carrying the staff id"},
	{Name: "staff_name_header", Default: auth.DefaultNameHeader, Desc: "Header carrying the staff display name"},
	{Name: "staff_role_header", Default: auth.DefaultRoleHeader, Desc: "Header carrying the staff role"},
	{Name: "dev_staff_id", Default: "", Desc: "Fallback staff id when no proxy headers are present (dev only)"},
	{Name: "dev_staff_role", Default: auth.RoleAdmin, Desc: "Role of the fallback staff id"},

	// Records API
	{Name: "api_base_url", Default: "http://localhost:8000/api", Desc: "Barangay records API base URL"},
	{Name: "api_token", Default: "", Desc: "Static bearer token for the records API"},
	{Name: "api_client_id", Default: "", Desc: "OAuth2 client id for the records API"},
	{Name: "api_client_secret", Default: "", Desc: "OAuth2 client secret for the records API"},
	{Name: "api_token_url", Default: "", Desc: "OAuth2 token endpoint"},
	{Name: "api_timeout", Default: "15s", Desc: "Per-request timeout for the records API"},

	// List behavior
	{Name: "search_debounce", Default: "400ms", Desc: "Search delay for screens that do not set their own (0 uses 500ms)"},
	{Name: "page_size", Default: paging.DefaultPageSize, Desc: "Default records per page"},
	{Name: "poll_interval", Default: "0s", Desc: "Re-fetch interval for screens that do not set their own (0 disables)"},
	{Name: "cache_ttl", Default: "30s", Desc: "How long a fetched page is reused (0 disables)"},

	// Screen registry
	{Name: "screen_idle_timeout", Default: "30m", Desc: "Unmount screens idle this long"},
	{Name: "screen_sweep_interval", Default: "1m", Desc: "How often idle screens are swept"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env > files > defaults, with BARANGAYHUB_* as the
// environment prefix for app keys.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BARANGAYHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StaffIDHeader:   appValues.String("staff_id_header"),
		StaffNameHeader: appValues.String("staff_name_header"),
		StaffRoleHeader: appValues.String("staff_role_header"),
		DevStaffID:      appValues.String("dev_staff_id"),
		DevStaffRole:    appValues.String("dev_staff_role"),

		APIBaseURL:      appValues.String("api_base_url"),
		APIToken:        appValues.String("api_token"),
		APIClientID:     appValues.String("api_client_id"),
		APIClientSecret: appValues.String("api_client_secret"),
		APITokenURL:     appValues.String("api_token_url"),
		APITimeout:      appValues.Duration("api_timeout", 15*time.Second),

		SearchDebounce: appValues.Duration("search_debounce", 400*time.Millisecond),
		PageSize:       appValues.Int("page_size"),
		PollInterval:   appValues.Duration("poll_interval", 0),
		CacheTTL:       appValues.Duration("cache_ttl", 30*time.Second),

		ScreenIdleTimeout:   appValues.Duration("screen_idle_timeout", 30*time.Minute),
		ScreenSweepInterval: appValues.Duration("screen_sweep_interval", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed Mongo URI or API URL, half-configured OAuth2
// credentials, and out-of-range list settings before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

// validateAppConfig holds the checks that do not depend on WAFFLE.
func validateAppConfig(appCfg AppConfig) error {
	u, err := url.Parse(appCfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", appCfg.APIBaseURL)
	}

	if appCfg.APIClientID != "" || appCfg.APIClientSecret != "" || appCfg.APITokenURL != "" {
		if appCfg.APIClientID == "" || appCfg.APIClientSecret == "" || appCfg.APITokenURL == "" {
			return fmt.Errorf("api_client_id, api_client_secret and api_token_url must be set together")
		}
	}

	if appCfg.PageSize < 1 || appCfg.PageSize > paging.MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", paging.MaxPageSize, appCfg.PageSize)
	}

	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"api_timeout", appCfg.APITimeout},
		{"search_debounce", appCfg.SearchDebounce},
		{"poll_interval", appCfg.PollInterval},
		{"cache_ttl", appCfg.CacheTTL},
		{"screen_idle_timeout", appCfg.ScreenIdleTimeout},
		{"screen_sweep_interval", appCfg.ScreenSweepInterval},
	} {
		if d.val < 0 {
			return fmt.Errorf("%s must not be negative, got %s", d.name, d.val)
		}
	}
	if appCfg.ScreenSweepInterval == 0 || appCfg.ScreenIdleTimeout == 0 {
		return fmt.Errorf("screen_idle_timeout and screen_sweep_interval must be positive")
	}
	return nil
}
