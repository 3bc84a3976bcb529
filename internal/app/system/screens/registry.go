package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"go.uber.org/zap"
)

// ErrUnknownScreen is returned by a Builder for a name it does not know.
var ErrUnknownScreen = errors.New("screens: unknown screen")

// ErrRegistryClosed is returned by Open after CloseAll.
var ErrRegistryClosed = errors.New("screens: registry closed")

// Builder constructs an unstarted screen on first use.
type Builder func() (Screen, error)

// Observer is told when screens are mounted and unmounted.
type Observer interface {
	ScreenOpened()
	ScreenClosed()
}

type key struct {
	session string
	screen  string
}

type entry struct {
	screen   Screen
	lastUsed time.Time
}

// Registry holds the screens mounted by each console session. Screens
// outlive the requests that use them, so they run on the registry's own
// context rather than a request's.
type Registry struct {
	clk clock.Clock
	log *zap.Logger
	obs Observer

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[key]*entry
	closed  bool
}

// NewRegistry returns an empty registry. obs may be nil.
func NewRegistry(clk clock.Clock, logger *zap.Logger, obs Observer) *Registry {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Registry{
		clk:     clk,
		log:     logger,
		obs:     obs,
		base:    base,
		cancel:  cancel,
		entries: make(map[key]*entry),
	}
}

// Open returns the session's screen called name, mounting it with build
// on first use. Every call counts as activity.
func (r *Registry) Open(session, name string, build Builder) (Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	k := key{session, name}
	if e, ok := r.entries[k]; ok {
		e.lastUsed = r.clk.Now()
		return e.screen, nil
	}

	s, err := build()
	if err != nil {
		return nil, err
	}
	if err := s.Start(r.base); err != nil {
		s.Close()
		return nil, fmt.Errorf("screens: start %s: %w", name, err)
	}
	r.entries[k] = &entry{screen: s, lastUsed: r.clk.Now()}
	if r.obs != nil {
		r.obs.ScreenOpened()
	}
	r.log.Debug("screen mounted", zap.String("session", session), zap.String("screen", name))
	return s, nil
}

// Get returns a mounted screen without mounting one, and records the
// access so the sweep keeps it alive.
func (r *Registry) Get(session, name string) (Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key{session, name}]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.clk.Now()
	return e.screen, true
}

// Close unmounts one screen.
func (r *Registry) Close(session, name string) bool {
	r.mu.Lock()
	e, ok := r.entries[key{session, name}]
	if ok {
		delete(r.entries, key{session, name})
	}
	r.mu.Unlock()

	if ok {
		r.unmount(e.screen)
	}
	return ok
}

// Sweep unmounts screens unused for longer than idle and returns how
// many it closed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.clk.Now().Add(-idle)

	r.mu.Lock()
	var stale []Screen
	for k, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.screen)
			delete(r.entries, k)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		r.unmount(s)
	}
	return len(stale)
}

// CloseAll unmounts every screen and refuses further Opens.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	all := make([]Screen, 0, len(r.entries))
	for k, e := range r.entries {
		all = append(all, e.screen)
		delete(r.entries, k)
	}
	r.mu.Unlock()

	for _, s := range all {
		r.unmount(s)
	}
	r.cancel()
}

// Len reports how many screens are mounted.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) unmount(s Screen) {
	s.Close()
	if r.obs != nil {
		r.obs.ScreenClosed()
	}
}
