package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFetchLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FetchStarted("residents")
	m.FetchStarted("residents")
	if got := testutil.ToFloat64(m.inflight.WithLabelValues("residents")); got != 2 {
		t.Errorf("in flight = %v, want 2", got)
	}

	m.FetchFinished("residents", listquery.OutcomeSuccess, 120*time.Millisecond)
	m.FetchFinished("residents", listquery.OutcomeStale, 300*time.Millisecond)
	m.CacheHit("residents")

	if got := testutil.ToFloat64(m.inflight.WithLabelValues("residents")); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("residents", "success")); got != 1 {
		t.Errorf("success fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("residents", "stale")); got != 1 {
		t.Errorf("stale fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("residents")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestOpenScreens(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ScreenOpened()
	m.ScreenOpened()
	m.ScreenClosed()
	if got := testutil.ToFloat64(m.openScreens); got != 1 {
		t.Errorf("open screens = %v, want 1", got)
	}
}

func TestInstrumentTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	m := New(prometheus.NewRegistry())
	hc := &http.Client{Transport: m.InstrumentTransport(nil)}
	resp, err := hc.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("418", "get")); got != 1 {
		t.Errorf("api requests{418,get} = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CacheHit("households")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `barangayhub_list_cache_hits_total{screen="households"} 1`) {
		t.Errorf("metric missing from output:\n%s", rec.Body.String())
	}
}
