package listquery

import (
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"go.uber.org/zap"
)

// DefaultDebounce suits most endpoints. Screens backed by expensive
// searches raise it (up to about a second).
const DefaultDebounce = 500 * time.Millisecond

// DefaultCacheSize bounds the per-controller result cache.
const DefaultCacheSize = 32

// Outcome classifies a finished fetch for observers.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeError    Outcome = "error"
	OutcomeStale    Outcome = "stale"
	OutcomeCanceled Outcome = "canceled"
)

// Observer receives fetch lifecycle events, typically for metrics.
// Methods are called with the controller lock held and must not block
// or call back into the controller.
type Observer interface {
	FetchStarted(screen string)
	FetchFinished(screen string, outcome Outcome, elapsed time.Duration)
	CacheHit(screen string)
}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Name identifies the listing in logs and metrics.
	Name string

	PageSize int
	Filter   FilterKey
	Sort     Sort

	// Debounce delays a typed search. Zero selects DefaultDebounce;
	// negative applies every keystroke at once.
	Debounce time.Duration

	// PollInterval re-fetches the current tuple periodically.
	// Zero disables polling.
	PollInterval time.Duration

	// CacheTTL is how long a cached page is served without a new
	// request. Zero disables the cache.
	CacheTTL  time.Duration
	CacheSize int

	Clock    clock.Clock
	Logger   *zap.Logger
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = paging.DefaultPageSize
	}
	if o.PageSize > paging.MaxPageSize {
		o.PageSize = paging.MaxPageSize
	}
	if o.Debounce < 0 {
		o.Debounce = 0
	} else if o.Debounce == 0 {
		o.Debounce = DefaultDebounce
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Sort.By != "" && o.Sort.Order == "" {
		o.Sort.Order = Ascending
	}
	return o
}

type nopObserver struct{}

func (nopObserver) FetchStarted(string)                          {}
func (nopObserver) FetchFinished(string, Outcome, time.Duration) {}
func (nopObserver) CacheHit(string)                              {}
