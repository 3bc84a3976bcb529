// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything
// specific to the barangay console lives here: the Mongo database that
// holds screen preferences, the records API the screens read from, and
// the list behavior defaults.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Console session cookie
	SessionKey    string
	SessionName   string
	SessionDomain string

	// Staff identity headers set by the auth proxy. Blank selects the default.
	StaffIDHeader   string
	StaffNameHeader string
	StaffRoleHeader string

	// Development-only fallback identity.
	DevStaffID   string
	DevStaffRole string

	// Records API
	APIBaseURL      string
	APIToken        string // static bearer token
	APIClientID     string // OAuth2 client credentials, used when APIToken is blank
	APIClientSecret string
	APITokenURL     string
	APITimeout      time.Duration

	// List defaults, applied to screens that do not set their own.
	SearchDebounce time.Duration
	PageSize       int
	PollInterval   time.Duration
	CacheTTL       time.Duration

	// Screen registry
	ScreenIdleTimeout   time.Duration // unmount screens untouched this long
	ScreenSweepInterval time.Duration
}
