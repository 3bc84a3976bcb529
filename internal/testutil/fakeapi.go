package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one row served by FakeAPI.
type Record map[string]any

// FakeAPI is an in-memory barangay API serving paginated envelopes
// ({count, next, previous, results}) for any collection path.
//
// Query handling mirrors the real service: page and page_size paginate,
// search matches any string field case-insensitively, sort_by and
// sort_order order results, and any other parameter is an equality
// filter. A page past the end answers 404 with {"detail": "Invalid page."}.
type FakeAPI struct {
	*httptest.Server

	mu      sync.Mutex
	data    map[string][]Record
	hits    map[string]int
	queries map[string][]string
	fail    map[string]int
	block   map[string]chan struct{}
}

// NewFakeAPI starts a FakeAPI that is closed when the test finishes.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		data:    make(map[string][]Record),
		hits:    make(map[string]int),
		queries: make(map[string][]string),
		fail:    make(map[string]int),
		block:   make(map[string]chan struct{}),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Set replaces the records served at path (for example "/residents/").
func (f *FakeAPI) Set(path string, rows ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[path] = append([]Record(nil), rows...)
}

// Seed serves n generated records at path; fill may add fields per row.
func (f *FakeAPI) Seed(path string, n int, fill func(i int, r Record)) {
	rows := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		r := Record{"id": i}
		if fill != nil {
			fill(i, r)
		}
		rows = append(rows, r)
	}
	f.Set(path, rows...)
}

// FailNext makes the next request to path answer status.
func (f *FakeAPI) FailNext(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[path] = status
}

// Block holds requests to path until the returned func is called.
func (f *FakeAPI) Block(path string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.block[path] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.block, path)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Hits returns how many requests path has received.
func (f *FakeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// LastQuery returns the raw query string of the latest request to path.
func (f *FakeAPI) LastQuery(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.queries[path]
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	f.mu.Lock()
	f.hits[path]++
	f.queries[path] = append(f.queries[path], r.URL.RawQuery)
	status, failing := f.fail[path]
	delete(f.fail, path)
	gate := f.block[path]
	rows, known := f.data[path]
	rows = append([]Record(nil), rows...)
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if path == "/" || path == "/health/" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if failing {
		writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
		return
	}
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	size := atoiDefault(q.Get("page_size"), 10)

	rows = filterRows(rows, q)
	sortRows(rows, q.Get("sort_by"), q.Get("sort_order"))

	total := len(rows)
	start := (page - 1) * size
	if page < 1 || (start >= total && page != 1) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
		return
	}
	end := min(start+size, total)
	if rows == nil {
		rows = []Record{}
	}

	body := map[string]any{
		"count":    total,
		"next":     nil,
		"previous": nil,
		"results":  rows[start:end],
	}
	if end < total {
		body["next"] = fmt.Sprintf("%s?page=%d", path, page+1)
	}
	if page > 1 {
		body["previous"] = fmt.Sprintf("%s?page=%d", path, page-1)
	}
	writeJSON(w, http.StatusOK, body)
}

var reserved = map[string]bool{"page": true, "page_size": true, "search": true, "sort_by": true, "sort_order": true}

func filterRows(rows []Record, q map[string][]string) []Record {
	term := strings.ToLower(strings.TrimSpace(firstOf(q["search"])))
	out := rows[:0]
	for _, row := range rows {
		if !matchesFilters(row, q) {
			continue
		}
		if term != "" && !matchesSearch(row, term) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesFilters(row Record, q map[string][]string) bool {
	for k, vs := range q {
		if reserved[k] || len(vs) == 0 {
			continue
		}
		if fmt.Sprint(row[k]) != vs[0] {
			return false
		}
	}
	return true
}

func matchesSearch(row Record, term string) bool {
	for _, v := range row {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func sortRows(rows []Record, by, order string) {
	if by == "" {
		return
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return lessValue(rows[j][by], rows[i][by])
		}
		return lessValue(rows[i][by], rows[j][by])
	})
}

func lessValue(a, b any) bool {
	fa, aok := number(a)
	fb, bok := number(b)
	if aok && bok {
		return fa < fb
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func firstOf(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
