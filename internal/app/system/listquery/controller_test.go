package listquery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/clock"
)

var epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// stubFetcher hands every Fetch call to the test, which decides when
// and how it resolves.
type stubFetcher struct {
	calls chan *stubCall
	// ignoreCancel simulates a transport that delivers a response even
	// after the controller lost interest in it.
	ignoreCancel bool
}

type stubCall struct {
	params  Params
	ctx     context.Context
	respond chan stubResult
}

type stubResult struct {
	page Page[string]
	err  error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{calls: make(chan *stubCall, 16)}
}

func (f *stubFetcher) Fetch(ctx context.Context, p Params) (Page[string], error) {
	call := &stubCall{params: p, ctx: ctx, respond: make(chan stubResult, 1)}
	f.calls <- call
	if f.ignoreCancel {
		r := <-call.respond
		return r.page, r.err
	}
	select {
	case r := <-call.respond:
		return r.page, r.err
	case <-ctx.Done():
		return Page[string]{}, ctx.Err()
	}
}

func (c *stubCall) succeed(total int, items ...string) {
	c.respond <- stubResult{page: Page[string]{Items: items, TotalCount: total}}
}

func (c *stubCall) fail(err error) {
	c.respond <- stubResult{err: err}
}

func nextCall(t *testing.T, f *stubFetcher) *stubCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func noCall(t *testing.T, f *stubFetcher) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch with params %+v", c.params)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitFor[T any](t *testing.T, c *Controller[T], what string, cond func(Snapshot[T]) bool) Snapshot[T] {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := c.Snapshot()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last snapshot: status=%v page=%d items=%v", what, s.Status, s.Page, s.Items)
		}
		time.Sleep(time.Millisecond)
	}
}

func settled(s Snapshot[string]) bool { return s.Status == Success || s.Status == Error }

type harness struct {
	ctrl    *Controller[string]
	fetcher *stubFetcher
	clock   *clock.FakeClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	f := newStubFetcher()
	clk := clock.Fake(epoch)
	if opts.Debounce == 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	opts.Clock = clk
	if opts.Name == "" {
		opts.Name = "residents"
	}
	ctrl := New[string](f, opts)
	t.Cleanup(ctrl.Close)
	return &harness{ctrl: ctrl, fetcher: f, clock: clk}
}

// startWith mounts the controller and resolves the first fetch with a
// set of total items.
func (h *harness) startWith(t *testing.T, total int) {
	t.Helper()
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := nextCall(t, h.fetcher)
	first.succeed(total, pageItems(first.params)...)
	waitFor(t, h.ctrl, "first page", settled)
}

// goToPage moves to page n and resolves its fetch.
func (h *harness) goToPage(t *testing.T, n, total int) {
	t.Helper()
	if !h.ctrl.SetPage(n) {
		t.Fatalf("SetPage(%d) rejected", n)
	}
	call := nextCall(t, h.fetcher)
	if call.params.Page != n {
		t.Fatalf("fetch page = %d, want %d", call.params.Page, n)
	}
	call.succeed(total, pageItems(call.params)...)
	waitFor(t, h.ctrl, fmt.Sprintf("page %d", n), func(s Snapshot[string]) bool {
		return s.Status == Success && s.DataParams.Page == n
	})
}

func pageItems(p Params) []string {
	return []string{fmt.Sprintf("%s/%s/p%d", p.Search, p.Filter, p.Page)}
}

func TestControllerIdleUntilStart(t *testing.T) {
	h := newHarness(t, Options{})

	s := h.ctrl.Snapshot()
	if s.Status != Idle {
		t.Fatalf("Status = %v, want idle", s.Status)
	}
	h.ctrl.SetFilter("resident")
	noCall(t, h.fetcher)

	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	call := nextCall(t, h.fetcher)
	want := Params{Filter: "resident", Page: 1, PageSize: 10}
	if call.params != want {
		t.Errorf("params = %+v, want %+v", call.params, want)
	}
	if got := h.ctrl.Snapshot().Status; got != Loading {
		t.Errorf("Status = %v, want loading", got)
	}
}

func TestControllerDerivedPaging(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)

	s := h.ctrl.Snapshot()
	if s.TotalCount != 25 || s.TotalPages != 3 {
		t.Fatalf("TotalCount=%d TotalPages=%d, want 25/3", s.TotalCount, s.TotalPages)
	}
	if !s.HasNext || s.HasPrevious {
		t.Errorf("HasNext=%v HasPrevious=%v on page 1", s.HasNext, s.HasPrevious)
	}

	h.goToPage(t, 3, 25)
	s = h.ctrl.Snapshot()
	if s.HasNext != (s.Page < s.TotalPages) {
		t.Errorf("HasNext=%v inconsistent with page %d of %d", s.HasNext, s.Page, s.TotalPages)
	}
	if !s.HasPrevious {
		t.Error("HasPrevious = false on page 3")
	}
}

func TestControllerDebounceCoalescesTyping(t *testing.T) {
	h := newHarness(t, Options{Debounce: 500 * time.Millisecond})
	h.startWith(t, 40)

	h.ctrl.SetSearchInput("Ana")
	h.clock.Advance(200 * time.Millisecond)
	h.ctrl.SetSearchInput("Anabel")

	if got := h.ctrl.Snapshot().SearchInput; got != "Anabel" {
		t.Errorf("SearchInput = %q, want typed text stored immediately", got)
	}
	noCall(t, h.fetcher)

	h.clock.Advance(499 * time.Millisecond)
	noCall(t, h.fetcher)

	h.clock.Advance(time.Millisecond)
	call := nextCall(t, h.fetcher)
	if call.params.Search != "Anabel" {
		t.Errorf("search = %q, want %q", call.params.Search, "Anabel")
	}
	noCall(t, h.fetcher)
}

func TestControllerDebounceWithoutChangeDoesNotFetch(t *testing.T) {
	h := newHarness(t, Options{})
	h.startWith(t, 5)

	h.ctrl.SetSearchInput("Ana")
	h.clock.Advance(100 * time.Millisecond)
	h.ctrl.SetSearchInput("")
	h.clock.Advance(time.Second)

	noCall(t, h.fetcher)
}

func TestControllerFlushSearch(t *testing.T) {
	h := newHarness(t, Options{})
	h.startWith(t, 5)

	h.ctrl.SetSearchInput("Dela Cruz")
	h.ctrl.FlushSearch()
	call := nextCall(t, h.fetcher)
	if call.params.Search != "Dela Cruz" {
		t.Errorf("search = %q, want %q", call.params.Search, "Dela Cruz")
	}

	// The cancelled timer must not fire a second request.
	h.clock.Advance(time.Second)
	noCall(t, h.fetcher)
}

func TestControllerFilterChangeResetsPage(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)
	h.goToPage(t, 3, 25)

	h.ctrl.SetFilter("resident")
	call := nextCall(t, h.fetcher)
	if call.params.Page != 1 {
		t.Errorf("page = %d after filter change, want 1", call.params.Page)
	}
	if call.params.Filter != "resident" {
		t.Errorf("filter = %q, want resident", call.params.Filter)
	}
	if got := h.ctrl.Query().Page; got != 1 {
		t.Errorf("Query().Page = %d, want 1", got)
	}
}

func TestControllerSearchChangeResetsPage(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 60)
	h.goToPage(t, 5, 60)

	h.ctrl.SetSearchInput("santos")
	h.clock.Advance(500 * time.Millisecond)

	call := nextCall(t, h.fetcher)
	if call.params.Page != 1 || call.params.Search != "santos" {
		t.Errorf("params = %+v, want page 1 search santos", call.params)
	}
}

func TestControllerSortAndPageSizeResetPage(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)
	h.goToPage(t, 2, 25)

	h.ctrl.SetSort(Sort{By: "last_name", Order: Descending})
	call := nextCall(t, h.fetcher)
	if call.params.Page != 1 || call.params.Sort.By != "last_name" {
		t.Errorf("params = %+v after sort change", call.params)
	}
	call.succeed(25, "a")
	waitFor(t, h.ctrl, "sorted page", settled)
	h.goToPage(t, 2, 25)

	if !h.ctrl.SetPageSize(20) {
		t.Fatal("SetPageSize(20) rejected")
	}
	call = nextCall(t, h.fetcher)
	if call.params.Page != 1 || call.params.PageSize != 20 {
		t.Errorf("params = %+v after page size change", call.params)
	}
	if h.ctrl.SetPageSize(0) {
		t.Error("SetPageSize(0) accepted")
	}
}

func TestControllerSetPageBounds(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)
	h.goToPage(t, 3, 25)

	for _, n := range []int{4, 0, -1, 100} {
		if h.ctrl.SetPage(n) {
			t.Errorf("SetPage(%d) accepted with 3 pages", n)
		}
	}
	if got := h.ctrl.Snapshot().Page; got != 3 {
		t.Errorf("Page = %d after rejected moves, want 3", got)
	}
	noCall(t, h.fetcher)
}

func TestControllerSetPageRejectedBeforeData(t *testing.T) {
	h := newHarness(t, Options{})
	if h.ctrl.SetPage(1) {
		t.Error("SetPage(1) accepted before any result")
	}
}

func TestControllerSetPageRejectedWhileNewSetLoads(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)

	h.ctrl.SetFilter("pending")
	nextCall(t, h.fetcher)

	// The old total belongs to a different set.
	if h.ctrl.SetPage(2) {
		t.Error("SetPage(2) accepted before the filtered set's count is known")
	}
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	h := newHarness(t, Options{})
	h.fetcher.ignoreCancel = true
	h.startWith(t, 3)

	h.ctrl.SetSearchInput("x")
	h.ctrl.FlushSearch()
	xCall := nextCall(t, h.fetcher)

	h.ctrl.SetSearchInput("y")
	h.ctrl.FlushSearch()
	yCall := nextCall(t, h.fetcher)

	if xCall.ctx.Err() == nil {
		t.Error("request for abandoned search was not cancelled")
	}

	xCall.succeed(1, "x-payload")
	// Give the stale completion time to land.
	time.Sleep(20 * time.Millisecond)
	s := h.ctrl.Snapshot()
	for _, it := range s.Items {
		if it == "x-payload" {
			t.Fatal("stale payload for search x was displayed")
		}
	}
	if s.Status != Loading {
		t.Errorf("Status = %v while y loads, want loading", s.Status)
	}

	yCall.succeed(2, "y-1", "y-2")
	s = waitFor(t, h.ctrl, "y results", settled)
	if s.TotalCount != 2 || len(s.Items) != 2 || s.Items[0] != "y-1" {
		t.Errorf("snapshot = %+v, want y results", s)
	}
	if s.DataParams.Search != "y" {
		t.Errorf("DataParams.Search = %q, want y", s.DataParams.Search)
	}
}

func TestControllerRefreshJoinsInFlight(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := nextCall(t, h.fetcher)

	if h.ctrl.Refresh() {
		t.Error("Refresh() issued a request while one was in flight")
	}
	noCall(t, h.fetcher)

	first.succeed(25, "a")
	waitFor(t, h.ctrl, "first page", settled)
	h.goToPage(t, 2, 25)

	if !h.ctrl.Refresh() {
		t.Fatal("Refresh() = false with nothing in flight")
	}
	call := nextCall(t, h.fetcher)
	if call.params.Page != 2 {
		t.Errorf("refresh page = %d, want 2", call.params.Page)
	}
	if got := h.ctrl.Snapshot(); got.Status != Loading || len(got.Items) == 0 {
		t.Errorf("refresh should show loading over existing data, got status=%v items=%v", got.Status, got.Items)
	}
}

func TestControllerErrorKeepsDataForSameTuple(t *testing.T) {
	h := newHarness(t, Options{})
	h.startWith(t, 3)

	h.ctrl.Refresh()
	nextCall(t, h.fetcher).fail(errors.New("connection reset"))

	s := waitFor(t, h.ctrl, "error", func(s Snapshot[string]) bool { return s.IsError() })
	if len(s.Items) == 0 || s.TotalCount != 3 {
		t.Errorf("data cleared by failed refresh: %+v", s)
	}
	if s.Message == "" {
		t.Error("error state has no message")
	}
	if s.Err == nil {
		t.Error("error state has no error")
	}

	// Retry recovers.
	if !h.ctrl.Refresh() {
		t.Fatal("Refresh() after error = false")
	}
	nextCall(t, h.fetcher).succeed(3, "ok")
	s = waitFor(t, h.ctrl, "recovery", settled)
	if s.IsError() || s.Message != "" {
		t.Errorf("still in error after successful retry: %+v", s)
	}
}

func TestControllerErrorClearsDataForNewTuple(t *testing.T) {
	h := newHarness(t, Options{})
	h.startWith(t, 3)

	h.ctrl.SetFilter("non-resident")
	nextCall(t, h.fetcher).fail(errors.New("boom"))

	s := waitFor(t, h.ctrl, "error", func(s Snapshot[string]) bool { return s.IsError() })
	if s.HasData || len(s.Items) != 0 {
		t.Errorf("data from the previous filter survived an error: %+v", s.Items)
	}
}

func TestControllerClampsPageWhenSetShrinks(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10})
	h.startWith(t, 25)
	h.goToPage(t, 3, 25)

	h.ctrl.Refresh()
	nextCall(t, h.fetcher).succeed(15)

	call := nextCall(t, h.fetcher)
	if call.params.Page != 2 {
		t.Fatalf("clamped fetch page = %d, want 2", call.params.Page)
	}
	call.succeed(15, "p2")
	s := waitFor(t, h.ctrl, "clamped page", settled)
	if s.Page != 2 || s.TotalPages != 2 {
		t.Errorf("Page=%d TotalPages=%d, want 2/2", s.Page, s.TotalPages)
	}
}

func TestControllerEmptyResultIsNotAnError(t *testing.T) {
	h := newHarness(t, Options{Filter: "all"})
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	nextCall(t, h.fetcher).succeed(0)

	s := waitFor(t, h.ctrl, "empty page", settled)
	if s.Status != Success {
		t.Fatalf("Status = %v, want success", s.Status)
	}
	if s.TotalPages != 0 || s.Page != 1 || len(s.Items) != 0 || s.Items == nil {
		t.Errorf("TotalPages=%d Page=%d Items=%v, want 0/1/[]", s.TotalPages, s.Page, s.Items)
	}
	if s.HasNext || s.HasPrevious {
		t.Error("empty set reports neighbouring pages")
	}
	if s.Narrowed("all") {
		t.Error("Narrowed() = true with no search and default filter")
	}

	h.ctrl.SetFilter("pending")
	nextCall(t, h.fetcher).succeed(0)
	s = waitFor(t, h.ctrl, "filtered empty", func(s Snapshot[string]) bool {
		return settled(s) && s.DataParams.Filter == "pending"
	})
	if !s.Narrowed("all") {
		t.Error("Narrowed() = false with a filter active")
	}
}

func TestControllerPollingRefreshes(t *testing.T) {
	h := newHarness(t, Options{PollInterval: 30 * time.Second})
	h.startWith(t, 3)

	h.clock.Advance(30 * time.Second)
	call := nextCall(t, h.fetcher)
	if call.params.Page != 1 {
		t.Errorf("poll page = %d, want 1", call.params.Page)
	}

	// Still in flight at the next tick: no duplicate request.
	h.clock.Advance(30 * time.Second)
	noCall(t, h.fetcher)

	call.succeed(3, "fresh")
	waitFor(t, h.ctrl, "poll result", settled)

	h.clock.Advance(30 * time.Second)
	nextCall(t, h.fetcher)
}

func TestControllerServesFreshCache(t *testing.T) {
	h := newHarness(t, Options{PageSize: 10, CacheTTL: time.Minute})
	h.startWith(t, 25)
	h.goToPage(t, 2, 25)

	if !h.ctrl.SetPage(1) {
		t.Fatal("SetPage(1) rejected")
	}
	noCall(t, h.fetcher)
	s := h.ctrl.Snapshot()
	if s.Status != Success || s.DataParams.Page != 1 {
		t.Errorf("cached page not shown: status=%v dataPage=%d", s.Status, s.DataParams.Page)
	}

	// Once stale, the cached page is shown while it revalidates.
	h.clock.Advance(2 * time.Minute)
	if !h.ctrl.SetPage(2) {
		t.Fatal("SetPage(2) rejected")
	}
	call := nextCall(t, h.fetcher)
	s = h.ctrl.Snapshot()
	if s.Status != Loading || s.DataParams.Page != 2 {
		t.Errorf("stale cache should show page 2 while loading: status=%v dataPage=%d", s.Status, s.DataParams.Page)
	}
	call.succeed(25, "revalidated")
	waitFor(t, h.ctrl, "revalidated", settled)
}

func TestControllerRecoversFetcherPanic(t *testing.T) {
	f := FetcherFunc[string](func(context.Context, Params) (Page[string], error) {
		panic("nil map")
	})
	ctrl := New[string](f, Options{Clock: clock.Fake(epoch)})
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := waitFor(t, ctrl, "error", func(s Snapshot[string]) bool { return s.IsError() })
	if s.Message == "" {
		t.Error("no message for recovered panic")
	}
}

func TestControllerSubscribeAndClose(t *testing.T) {
	h := newHarness(t, Options{})
	changes, cancel := h.ctrl.Subscribe()
	defer cancel()

	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change notification after Start")
	}

	call := nextCall(t, h.fetcher)
	h.ctrl.Close()

	if call.ctx.Err() == nil {
		t.Error("Close did not cancel the in-flight request")
	}
	// Drain a pending notification, then expect the channel closed.
	for range changes {
	}
	if err := h.ctrl.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
	h.ctrl.SetSearchInput("ignored")
	if h.ctrl.Refresh() {
		t.Error("Refresh() after Close = true")
	}
}

func TestParamsKeys(t *testing.T) {
	a := Params{Search: "ana", Filter: "resident", Page: 1, PageSize: 10}
	b := a
	b.Page = 2

	if a.Key() == b.Key() {
		t.Error("Key() ignores page")
	}
	if a.SetKey() != b.SetKey() {
		t.Error("SetKey() depends on page")
	}
	c := a
	c.Search = "ana&filter=x"
	if c.Key() == a.Key() || c.SetKey() == a.SetKey() {
		t.Error("keys collide when search contains separators")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := map[string]SortOrder{
		"":      Ascending,
		"asc":   Ascending,
		"DESC":  Descending,
		" desc": Descending,
		"up":    Ascending,
	}
	for in, want := range tests {
		if got := ParseSortOrder(in); got != want {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", in, got, want)
		}
	}
}
