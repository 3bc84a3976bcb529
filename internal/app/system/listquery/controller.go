package listquery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"go.uber.org/zap"
)

// Controller owns the query state of one listing. Create it with New,
// mount it with Start, and unmount it with Close.
type Controller[T any] struct {
	fetcher Fetcher[T]
	opts    Options
	clk     clock.Clock
	log     *zap.Logger
	cache   *resultCache[T]

	mu      sync.Mutex
	q       Query
	status  Status
	err     error
	version uint64

	data       Page[T]
	dataParams Params
	hasData    bool

	started bool
	closed  bool
	base    context.Context
	stop    context.CancelFunc

	// reqID is the id of the newest request; completions carrying any
	// other id are stale.
	reqID    uint64
	inflight *request

	debounce   *clock.Timer
	debounceID uint64
	poll       *clock.Timer

	subs    map[int]chan struct{}
	nextSub int
}

type request struct {
	id      uint64
	params  Params
	cancel  context.CancelFunc
	started time.Time
}

// New returns an idle controller. No request is issued until Start.
func New[T any](f Fetcher[T], opts Options) *Controller[T] {
	opts = opts.withDefaults()
	return &Controller[T]{
		fetcher: f,
		opts:    opts,
		clk:     opts.Clock,
		log:     opts.Logger.With(zap.String("screen", opts.Name)),
		cache:   newResultCache[T](opts.CacheTTL, opts.CacheSize),
		q: Query{
			Filter:   opts.Filter,
			Sort:     opts.Sort,
			Page:     1,
			PageSize: opts.PageSize,
		},
		subs: make(map[int]chan struct{}),
	}
}

// Name returns the listing name given in Options.
func (c *Controller[T]) Name() string { return c.opts.Name }

// Start mounts the controller: it issues the first fetch and starts
// polling. Fetches are bound to ctx; cancelling ctx abandons them.
// Starting twice is a no-op.
func (c *Controller[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	c.started = true
	c.base, c.stop = context.WithCancel(ctx)
	c.issueLocked(false)
	c.schedulePollLocked()
	c.changedLocked()
	return nil
}

// Close unmounts the controller. Pending timers are stopped, the
// in-flight request is cancelled and subscriber channels are closed.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.debounce.Stop()
	c.poll.Stop()
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
	if c.stop != nil {
		c.stop()
	}
	c.cache.clear()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// SetSearchInput stores typed text and (re)arms the debounce timer.
// It never fetches by itself.
func (c *Controller[T]) SetSearchInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.q.SearchInput = text
	c.debounce.Stop()
	c.debounceID++

	if c.opts.Debounce <= 0 {
		c.debounce = nil
		c.applySearchLocked()
		c.changedLocked()
		return
	}

	id := c.debounceID
	c.debounce = c.clk.AfterFunc(c.opts.Debounce, func() { c.debounceFired(id) })
	c.changedLocked()
}

// FlushSearch applies pending typed text immediately, as when the user
// presses enter.
func (c *Controller[T]) FlushSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.debounce.Stop()
	c.debounce = nil
	c.debounceID++
	if c.applySearchLocked() {
		c.changedLocked()
	}
}

func (c *Controller[T]) debounceFired(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Superseded by a later keystroke or a flush.
	if c.closed || id != c.debounceID {
		return
	}
	c.debounce = nil
	if c.applySearchLocked() {
		c.changedLocked()
	}
}

// applySearchLocked promotes the typed text to the debounced search.
// It reports whether the debounced search changed.
func (c *Controller[T]) applySearchLocked() bool {
	if c.q.SearchInput == c.q.Search {
		return false
	}
	c.q.Search = c.q.SearchInput
	c.resetSetLocked()
	return true
}

// SetFilter switches the active filter tab and fetches page 1.
func (c *Controller[T]) SetFilter(key FilterKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || key == c.q.Filter {
		return
	}
	c.q.Filter = key
	c.resetSetLocked()
	c.changedLocked()
}

// SetSort replaces the sort directive and fetches page 1.
func (c *Controller[T]) SetSort(s Sort) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.By != "" && s.Order == "" {
		s.Order = Ascending
	}
	if c.closed || s == c.q.Sort {
		return
	}
	c.q.Sort = s
	c.resetSetLocked()
	c.changedLocked()
}

// SetPageSize changes the page size and fetches page 1. Sizes outside
// [1, paging.MaxPageSize] are rejected.
func (c *Controller[T]) SetPageSize(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || n < 1 || n > paging.MaxPageSize {
		return false
	}
	if n == c.q.PageSize {
		return true
	}
	c.q.PageSize = n
	c.resetSetLocked()
	c.changedLocked()
	return true
}

// SetPage moves to page n. It returns false, changing nothing, unless
// 1 <= n <= TotalPages of the current set.
func (c *Controller[T]) SetPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !paging.InRange(n, c.totalPagesLocked()) {
		return false
	}
	if n == c.q.Page {
		return true
	}
	c.q.Page = n
	if c.started {
		c.issueLocked(false)
	}
	c.changedLocked()
	return true
}

// Refresh re-fetches the current tuple without resetting the page. It
// joins a request already in flight for the tuple instead of issuing a
// second one, and reports whether a new request was issued.
func (c *Controller[T]) Refresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.started || c.inflight != nil {
		return false
	}
	c.issueLocked(true)
	c.changedLocked()
	return true
}

// Query returns a copy of the current query state.
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q
}

// Snapshot returns the state a rendering layer needs.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := paging.Derive(c.setTotalLocked(), c.q.Page, c.q.PageSize)
	s := Snapshot[T]{
		Version:     c.version,
		Status:      c.status,
		HasData:     c.hasData,
		SearchInput: c.q.SearchInput,
		Search:      c.q.Search,
		Filter:      c.q.Filter,
		Sort:        c.q.Sort,
		Page:        c.q.Page,
		PageSize:    c.q.PageSize,
		TotalPages:  d.TotalPages,
		HasNext:     d.HasNext,
		HasPrevious: d.HasPrevious,
		Err:         c.err,
		Message:     Message(c.err),
	}
	if c.hasData {
		s.Items = c.data.Items
		s.TotalCount = c.data.TotalCount
		s.DataParams = c.dataParams
	}
	return s
}

// Subscribe returns a channel that receives a value whenever the
// snapshot changes. Notifications coalesce: a slow reader sees one
// pending value and should read Snapshot for the latest state. The
// channel is closed by the returned cancel func or by Close.
func (c *Controller[T]) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// resetSetLocked applies the page reset that follows any change to the
// result set's identity, then fetches if mounted.
func (c *Controller[T]) resetSetLocked() {
	c.q.Page = 1
	if c.started {
		c.issueLocked(false)
	}
}

// setTotalLocked is the item count of the current set. It is 0 until a
// result for the current set (any page) has arrived.
func (c *Controller[T]) setTotalLocked() int {
	if !c.hasData || c.dataParams.SetKey() != c.q.Params().SetKey() {
		return 0
	}
	return c.data.TotalCount
}

func (c *Controller[T]) totalPagesLocked() int {
	return paging.TotalPages(c.setTotalLocked(), c.q.PageSize)
}

// issueLocked starts a request for the current tuple. A request in
// flight for an older tuple is cancelled; one in flight for the same
// tuple is joined. Unless refresh is set, a cached page for the tuple
// is shown first and, when fresh, used instead of a request.
func (c *Controller[T]) issueLocked(refresh bool) {
	p := c.q.Params()
	key := p.Key()

	if c.inflight != nil {
		if c.inflight.params.Key() == key {
			return
		}
		c.inflight.cancel()
		c.inflight = nil
	}

	now := c.clk.Now()
	if !refresh {
		if page, fresh, ok := c.cache.get(key, now); ok {
			c.setDataLocked(p, page)
			if fresh {
				// Invalidate anything older that might still complete.
				c.reqID++
				c.status = Success
				c.err = nil
				c.opts.Observer.CacheHit(c.opts.Name)
				c.log.Debug("list served from cache", zap.String("params", key))
				return
			}
		}
	}

	c.reqID++
	ctx, cancel := context.WithCancel(c.base)
	req := &request{id: c.reqID, params: p, cancel: cancel, started: now}
	c.inflight = req
	c.status = Loading
	c.err = nil
	c.opts.Observer.FetchStarted(c.opts.Name)
	c.log.Debug("list fetch issued",
		zap.Uint64("request_id", req.id),
		zap.String("params", key),
		zap.Bool("refresh", refresh))

	go c.run(ctx, req)
}

func (c *Controller[T]) run(ctx context.Context, req *request) {
	page, err := c.fetch(ctx, req.params)
	c.complete(req, page, err)
}

func (c *Controller[T]) fetch(ctx context.Context, p Params) (page Page[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listquery: fetch panicked: %v", r)
		}
	}()
	return c.fetcher.Fetch(ctx, p)
}

func (c *Controller[T]) complete(req *request, page Page[T], err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	elapsed := now.Sub(req.started)
	if c.closed {
		c.opts.Observer.FetchFinished(c.opts.Name, OutcomeCanceled, elapsed)
		return
	}

	if c.inflight == req {
		c.inflight = nil
	}
	req.cancel()

	if err == nil {
		c.cache.put(req.params.Key(), page, now)
	}

	if req.id != c.reqID {
		outcome := OutcomeStale
		if errors.Is(err, context.Canceled) {
			outcome = OutcomeCanceled
		}
		c.opts.Observer.FetchFinished(c.opts.Name, outcome, elapsed)
		c.log.Debug("discarded response for abandoned params",
			zap.Uint64("request_id", req.id),
			zap.Uint64("current_request_id", c.reqID))
		return
	}

	if err != nil {
		c.opts.Observer.FetchFinished(c.opts.Name, OutcomeError, elapsed)
		c.log.Warn("list fetch failed",
			zap.Uint64("request_id", req.id),
			zap.String("params", req.params.Key()),
			zap.Error(err))
		c.status = Error
		c.err = err
		// Keep what is on screen for a failed refresh of the same
		// tuple; data for a different tuple would be misleading.
		if c.hasData && c.dataParams.Key() != req.params.Key() {
			c.data = Page[T]{}
			c.dataParams = Params{}
			c.hasData = false
		}
		c.changedLocked()
		return
	}

	c.opts.Observer.FetchFinished(c.opts.Name, OutcomeSuccess, elapsed)
	c.setDataLocked(req.params, page)
	c.status = Success
	c.err = nil

	// The set shrank under the current page (for example, records were
	// removed between requests). Move to the last page that exists.
	tp := paging.TotalPages(page.TotalCount, req.params.PageSize)
	if clamped := paging.Clamp(c.q.Page, tp); clamped != c.q.Page {
		c.log.Debug("page out of range after fetch, clamping",
			zap.Int("page", c.q.Page),
			zap.Int("total_pages", tp))
		c.q.Page = clamped
		c.issueLocked(false)
	}
	c.changedLocked()
}

func (c *Controller[T]) setDataLocked(p Params, page Page[T]) {
	if page.Items == nil {
		page.Items = []T{}
	}
	c.data = page
	c.dataParams = p
	c.hasData = true
}

func (c *Controller[T]) schedulePollLocked() {
	if c.opts.PollInterval <= 0 {
		return
	}
	c.poll = c.clk.AfterFunc(c.opts.PollInterval, c.pollFired)
}

func (c *Controller[T]) pollFired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.inflight == nil {
		c.issueLocked(true)
		c.changedLocked()
	}
	c.schedulePollLocked()
}

// changedLocked bumps the snapshot version and pings subscribers
// without blocking.
func (c *Controller[T]) changedLocked() {
	c.version++
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
