// Package timeouts holds the timeout values used with context.WithTimeout
// around I/O: Mongo calls in handlers and requests to the barangay API.
//
// Values can be changed once at startup with Configure. Until then the
// defaults apply.
//
//   - Ping: health checks against Mongo and the API
//   - Short: single-document reads and writes (screen preferences)
//   - Fetch: one list request to the barangay API
//   - Long: index creation and other startup work
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing  = 2 * time.Second
	DefaultShort = 5 * time.Second
	DefaultFetch = 15 * time.Second
	DefaultLong  = 30 * time.Second
)

var (
	mu    sync.RWMutex
	cur   = defaults()
	unset Config
)

func defaults() Config {
	return Config{
		Ping:  DefaultPing,
		Short: DefaultShort,
		Fetch: DefaultFetch,
		Long:  DefaultLong,
	}
}

// Config holds timeout values. Zero fields keep the current value.
type Config struct {
	Ping  time.Duration
	Short time.Duration
	Fetch time.Duration
	Long  time.Duration
}

func Ping() time.Duration  { return get().Ping }
func Short() time.Duration { return get().Short }

// Fetch bounds a single list request, including the time spent waiting
// on a coalesced request made by another caller.
func Fetch() time.Duration { return get().Fetch }

func Long() time.Duration { return get().Long }

func get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero values in cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		cur.Ping = cfg.Ping
	}
	if cfg.Short > 0 {
		cur.Short = cfg.Short
	}
	if cfg.Fetch > 0 {
		cur.Fetch = cfg.Fetch
	}
	if cfg.Long > 0 {
		cur.Long = cfg.Long
	}
}

// Reset restores the defaults. Tests use it after Configure.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the values in effect, for startup logging.
func Current() Config { return get() }

// IsZero reports whether no field is set.
func (c Config) IsZero() bool { return c == unset }

// WithTimeout is context.WithTimeout whose cancel func logs a warning
// when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save screen prefs")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
