// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows a list screen shows when neither
// the screen nor the user's saved preferences choose otherwise.
const DefaultPageSize = 10

// MaxPageSize caps page_size on outbound requests so a tampered form
// cannot ask the API for an unbounded page.
const MaxPageSize = 100

// TotalPages returns ceil(total / pageSize). It is 0 for an empty set
// and for a non-positive pageSize.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Clamp bounds page to [1, max(totalPages, 1)].
func Clamp(page, totalPages int) int {
	upper := totalPages
	if upper < 1 {
		upper = 1
	}
	if page < 1 {
		return 1
	}
	if page > upper {
		return upper
	}
	return page
}

// InRange reports whether page addresses an existing page.
// Nothing is in range while totalPages is 0.
func InRange(page, totalPages int) bool {
	return page >= 1 && page <= totalPages
}

// Derived is pagination metadata recomputed from a result count and
// the current query. It is never stored alongside the result.
type Derived struct {
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// Derive computes paging metadata for page of a set with total items.
func Derive(total, page, pageSize int) Derived {
	tp := TotalPages(total, pageSize)
	return Derived{
		TotalPages:  tp,
		HasNext:     page < tp,
		HasPrevious: page > 1,
	}
}

// Range holds the 1-based item indexes shown on a page ("11–20 of 25").
type Range struct {
	Start int // 0 if no results
	End   int // 0 if no results
}

// ComputeRange calculates the display range for page given how many
// rows the page actually holds.
func ComputeRange(page, pageSize, shown int) Range {
	if shown <= 0 || page < 1 || pageSize <= 0 {
		return Range{}
	}
	start := (page-1)*pageSize + 1
	return Range{Start: start, End: start + shown - 1}
}

// Window returns up to width page numbers centred on page, for
// rendering numbered page links. It is empty when there are no pages.
func Window(page, totalPages, width int) []int {
	if totalPages < 1 || width < 1 {
		return nil
	}
	if width > totalPages {
		width = totalPages
	}
	page = Clamp(page, totalPages)

	first := page - width/2
	if first < 1 {
		first = 1
	}
	if first+width-1 > totalPages {
		first = totalPages - width + 1
	}

	out := make([]int, width)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// ParsePage extracts the 1-based "page" form or query value.
// Returns 0 if absent or not a number so callers can reject it.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		s = r.PostFormValue("page")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParsePageSize extracts "page_size", falling back to def when absent,
// invalid, or above MaxPageSize.
func ParsePageSize(r *http.Request, def int) int {
	s := query.Get(r, "page_size")
	if s == "" {
		s = r.PostFormValue("page_size")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxPageSize {
		return def
	}
	return n
}
