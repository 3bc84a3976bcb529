package listquery

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterKey names a filter tab ("all", "resident", "pending", ...).
// The controller treats it as opaque; fetchers map it to request
// discriminators.
type FilterKey string

// SortOrder is the direction of a sort directive.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder maps user input to a SortOrder, defaulting to Ascending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// Sort is an optional sort directive. The zero value leaves ordering
// to the server.
type Sort struct {
	By    string    `json:"by,omitempty"`
	Order SortOrder `json:"order,omitempty"`
}

// IsZero reports whether no sort directive is set.
func (s Sort) IsZero() bool { return s.By == "" }

// Params is the parameter tuple that identifies one fetch.
type Params struct {
	Search   string
	Filter   FilterKey
	Sort     Sort
	Page     int
	PageSize int
}

// Key returns a stable string for the whole tuple.
func (p Params) Key() string {
	v := p.setValues()
	v.Set("page", strconv.Itoa(p.Page))
	return v.Encode()
}

// SetKey identifies the result set regardless of page: two tuples with
// the same SetKey share a total count.
func (p Params) SetKey() string {
	return p.setValues().Encode()
}

func (p Params) setValues() url.Values {
	v := url.Values{}
	v.Set("search", p.Search)
	v.Set("filter", string(p.Filter))
	v.Set("sort_by", p.Sort.By)
	v.Set("sort_order", string(p.Sort.Order))
	v.Set("page_size", strconv.Itoa(p.PageSize))
	return v
}

// Query is the controller-owned query state.
type Query struct {
	SearchInput string // raw text as typed
	Search      string // debounced text used in requests
	Filter      FilterKey
	Sort        Sort
	Page        int
	PageSize    int
}

// Params builds the request tuple for the current query.
func (q Query) Params() Params {
	return Params{
		Search:   q.Search,
		Filter:   q.Filter,
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// Page is one page of results and the total across all pages.
// It is never modified after a fetcher returns it.
type Page[T any] struct {
	Items      []T
	TotalCount int
}

// Status is the controller's fetch state.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Snapshot is what a rendering layer sees. Items belong to DataParams,
// which can lag the current query while a new request loads.
type Snapshot[T any] struct {
	Version uint64
	Status  Status

	Items      []T
	TotalCount int
	DataParams Params
	HasData    bool

	SearchInput string
	Search      string
	Filter      FilterKey
	Sort        Sort
	Page        int
	PageSize    int

	TotalPages  int
	HasNext     bool
	HasPrevious bool

	Err     error
	Message string
}

func (s Snapshot[T]) IsLoading() bool { return s.Status == Loading }
func (s Snapshot[T]) IsError() bool   { return s.Status == Error }

// Narrowed reports whether a search or a non-default filter is active,
// which is how a rendering layer tells "no matches" from "no records".
func (s Snapshot[T]) Narrowed(defaultFilter FilterKey) bool {
	return s.Search != "" || s.Filter != defaultFilter
}
