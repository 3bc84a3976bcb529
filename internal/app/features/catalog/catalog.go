// internal/app/features/catalog/catalog.go
package catalog

import (
	"errors"
	"net/url"
	"slices"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/apiclient"
	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
	"github.com/dalemusser/barangayhub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrForbidden is returned when the staff member's role may not open a screen.
var ErrForbidden = errors.New("catalog: screen not available for role")

// Defaults apply to every screen that does not set its own value.
type Defaults struct {
	PageSize     int
	Debounce     time.Duration
	PollInterval time.Duration
	CacheTTL     time.Duration
}

// Overrides replace the screens' own values when non-zero. A negative
// Debounce turns debouncing off on every screen.
type Overrides struct {
	Debounce     time.Duration
	PollInterval time.Duration
}

// Deps are the collaborators every screen is built with.
type Deps struct {
	Client    *apiclient.Client
	Clock     clock.Clock
	Logger    *zap.Logger
	Observer  listquery.Observer
	Defaults  Defaults
	Overrides Overrides
}

// Entry describes one screen of the console.
type Entry struct {
	Meta screens.Meta
	Path string

	// Roles that may open the screen. Empty means every staff role.
	Roles []string

	PageSize     int
	Debounce     time.Duration
	PollInterval time.Duration
	Sort         listquery.Sort

	columns []screens.Column
	build   func(e Entry, d Deps, user *auth.SessionUser, opts listquery.Options) screens.Screen
}

// Allows reports whether user may open the screen.
func (e Entry) Allows(user *auth.SessionUser) bool {
	if len(e.Roles) == 0 {
		return true
	}
	return user != nil && user.HasRole(e.Roles...)
}

// HasTab reports whether key is one of the screen's filter tabs.
func (e Entry) HasTab(key listquery.FilterKey) bool {
	return slices.ContainsFunc(e.Meta.Tabs, func(t screens.Tab) bool { return t.Key == key })
}

// Sortable reports whether some column sorts by field.
func (e Entry) Sortable(field string) bool {
	return field != "" && slices.ContainsFunc(e.columns, func(c screens.Column) bool { return c.SortBy == field })
}

// screenDef is the typed half of an Entry.
type screenDef[T any] struct {
	entry   Entry
	filters map[listquery.FilterKey]url.Values
	fields  []screens.Field[T]
	id      func(T) string
	// scope adds parameters derived from the viewer.
	scope func(user *auth.SessionUser) func(listquery.FilterKey, url.Values)
}

func define[T any](d screenDef[T]) Entry {
	e := d.entry
	e.columns = make([]screens.Column, len(d.fields))
	for i, f := range d.fields {
		e.columns[i] = screens.Column{Title: f.Title, SortBy: f.SortBy}
	}
	e.build = func(e Entry, deps Deps, user *auth.SessionUser, opts listquery.Options) screens.Screen {
		ep := apiclient.Endpoint[T]{
			Client:  deps.Client,
			Path:    e.Path,
			Filters: d.filters,
		}
		if d.scope != nil {
			ep.Scope = d.scope(user)
		}
		ctrl := listquery.New[T](ep, opts)
		return screens.Bind(e.Meta, ctrl, d.fields, d.id)
	}
	return e
}

// Catalog is the set of screens the console offers.
type Catalog struct {
	deps    Deps
	entries []Entry
}

// New returns the barangay console catalog.
func New(deps Deps) *Catalog {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Catalog{deps: deps, entries: entries()}
}

// Entries returns the screens user may open, in menu order.
func (c *Catalog) Entries(user *auth.SessionUser) []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Allows(user) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds a screen by name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c.entries {
		if e.Meta.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Options resolves the controller options for a screen. Timing comes
// from Overrides, then the screen's own value, then Defaults. Saved
// preferences apply last; those that no longer fit the screen are
// ignored.
func (c *Catalog) Options(e Entry, prefs *models.ScreenPrefs) listquery.Options {
	d, o := c.deps.Defaults, c.deps.Overrides
	opts := listquery.Options{
		Name:         e.Meta.Name,
		PageSize:     firstPositive(e.PageSize, d.PageSize, paging.DefaultPageSize),
		Filter:       e.Meta.DefaultFilter,
		Sort:         e.Sort,
		Debounce:     firstNonZero(o.Debounce, e.Debounce, d.Debounce),
		PollInterval: firstNonZero(o.PollInterval, e.PollInterval, d.PollInterval),
		CacheTTL:     d.CacheTTL,
		Clock:        c.deps.Clock,
		Logger:       c.deps.Logger.With(zap.String("screen", e.Meta.Name)),
		Observer:     c.deps.Observer,
	}
	if prefs == nil {
		return opts
	}
	if prefs.PageSize > 0 && prefs.PageSize <= paging.MaxPageSize {
		opts.PageSize = prefs.PageSize
	}
	if f := listquery.FilterKey(prefs.Filter); f != "" && e.HasTab(f) {
		opts.Filter = f
	}
	if e.Sortable(prefs.SortBy) {
		opts.Sort = listquery.Sort{By: prefs.SortBy, Order: listquery.ParseSortOrder(prefs.SortOrder)}
	}
	return opts
}

// Builder returns a screens.Builder that mounts name for user.
func (c *Catalog) Builder(name string, user *auth.SessionUser, prefs *models.ScreenPrefs) screens.Builder {
	return func() (screens.Screen, error) {
		e, ok := c.Lookup(name)
		if !ok {
			return nil, screens.ErrUnknownScreen
		}
		if !e.Allows(user) {
			return nil, ErrForbidden
		}
		return e.build(e, c.deps, user, c.Options(e, prefs)), nil
	}
}

func firstPositive(vs ...int) int {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonZero(vs ...time.Duration) time.Duration {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}
