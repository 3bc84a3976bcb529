// Package screens binds list controllers to the rendering contract shared
// by the HTML console and the terminal client, and keeps track of the
// screens each console session has mounted.
package screens

import (
	"context"
	"slices"
	"strconv"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/paging"
	"github.com/dalemusser/barangayhub/internal/app/system/search"
)

// pageWindow is how many numbered page links a view offers.
const pageWindow = 5

// Tab is one filter tab.
type Tab struct {
	Key   listquery.FilterKey `json:"key"`
	Label string              `json:"label"`
}

// Column is a table heading. Sortable columns carry the API sort field.
type Column struct {
	Title  string `json:"title"`
	SortBy string `json:"sortBy,omitempty"`
}

// Row is one rendered item.
type Row struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// View is the rendering contract: everything a rendering layer may show.
type View struct {
	Screen  string   `json:"screen"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Tabs    []Tab    `json:"tabs"`

	Rows       []Row `json:"items"`
	TotalCount int   `json:"totalCount"`

	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
	TotalPages  int          `json:"totalPages"`
	HasNext     bool         `json:"hasNext"`
	HasPrevious bool         `json:"hasPrevious"`
	Pages       []int        `json:"pages"`
	Range       paging.Range `json:"-"`

	IsLoading bool   `json:"isLoading"`
	IsError   bool   `json:"isError"`
	Message   string `json:"message,omitempty"`

	SearchInput  string              `json:"searchInput"`
	Search       string              `json:"search"`
	Filter       listquery.FilterKey `json:"filter"`
	Sort         listquery.Sort      `json:"sort"`
	Empty        bool                `json:"empty"`
	EmptyMessage string              `json:"emptyMessage,omitempty"`

	Version uint64 `json:"version"`
}

// Screen is a mounted listing with its bound handlers. Implementations
// are safe for concurrent use.
type Screen interface {
	Name() string
	View() View
	Query() listquery.Query

	SetSearchInput(text string)
	FlushSearch()
	// SetFilter reports false for a key that is not one of the tabs.
	SetFilter(key listquery.FilterKey) bool
	// SetSort reports false for a field no column sorts by.
	SetSort(s listquery.Sort) bool
	SetPage(n int) bool
	SetPageSize(n int) bool
	Refresh() bool

	Subscribe() (<-chan struct{}, func())
	Start(ctx context.Context) error
	Close()
}

// Meta describes a screen independent of its item type.
type Meta struct {
	Name          string
	Title         string
	Tabs          []Tab
	DefaultFilter listquery.FilterKey
	NoMatches     string
	NoRecords     string
}

// Field renders one column of an item.
type Field[T any] struct {
	Title  string
	SortBy string
	Value  func(T) string
}

// Bind wraps ctrl as a Screen whose rows are rendered by fields. id
// gives each row a stable identifier and may be nil.
func Bind[T any](meta Meta, ctrl *listquery.Controller[T], fields []Field[T], id func(T) string) Screen {
	return &bound[T]{meta: meta, ctrl: ctrl, fields: fields, id: id}
}

type bound[T any] struct {
	meta   Meta
	ctrl   *listquery.Controller[T]
	fields []Field[T]
	id     func(T) string
}

func (b *bound[T]) Name() string            { return b.meta.Name }
func (b *bound[T]) Query() listquery.Query  { return b.ctrl.Query() }
func (b *bound[T]) SetSearchInput(s string) { b.ctrl.SetSearchInput(s) }
func (b *bound[T]) FlushSearch()            { b.ctrl.FlushSearch() }
func (b *bound[T]) SetPage(n int) bool      { return b.ctrl.SetPage(n) }
func (b *bound[T]) SetPageSize(n int) bool  { return b.ctrl.SetPageSize(n) }
func (b *bound[T]) Refresh() bool           { return b.ctrl.Refresh() }
func (b *bound[T]) Close()                  { b.ctrl.Close() }

func (b *bound[T]) Start(ctx context.Context) error { return b.ctrl.Start(ctx) }

func (b *bound[T]) Subscribe() (<-chan struct{}, func()) { return b.ctrl.Subscribe() }

func (b *bound[T]) SetFilter(key listquery.FilterKey) bool {
	ok := slices.ContainsFunc(b.meta.Tabs, func(t Tab) bool { return t.Key == key })
	if !ok {
		return false
	}
	b.ctrl.SetFilter(key)
	return true
}

func (b *bound[T]) SetSort(s listquery.Sort) bool {
	if !s.IsZero() && !slices.ContainsFunc(b.fields, func(f Field[T]) bool { return f.SortBy == s.By }) {
		return false
	}
	b.ctrl.SetSort(s)
	return true
}

func (b *bound[T]) View() View {
	s := b.ctrl.Snapshot()

	v := View{
		Screen:      b.meta.Name,
		Title:       b.meta.Title,
		Tabs:        b.meta.Tabs,
		TotalCount:  s.TotalCount,
		Page:        s.Page,
		PageSize:    s.PageSize,
		TotalPages:  s.TotalPages,
		HasNext:     s.HasNext,
		HasPrevious: s.HasPrevious,
		Pages:       paging.Window(s.Page, s.TotalPages, pageWindow),
		IsLoading:   s.IsLoading(),
		IsError:     s.IsError(),
		Message:     s.Message,
		SearchInput: s.SearchInput,
		Search:      s.Search,
		Filter:      s.Filter,
		Sort:        s.Sort,
		Version:     s.Version,
	}

	v.Columns = make([]Column, len(b.fields))
	for i, f := range b.fields {
		v.Columns[i] = Column{Title: f.Title, SortBy: f.SortBy}
	}

	v.Rows = make([]Row, 0, len(s.Items))
	for i, it := range s.Items {
		row := Row{Cells: make([]string, len(b.fields))}
		for j, f := range b.fields {
			row.Cells[j] = f.Value(it)
		}
		if b.id != nil {
			row.ID = b.id(it)
		} else {
			row.ID = strconv.Itoa(i)
		}
		v.Rows = append(v.Rows, row)
	}
	if s.HasData {
		v.Range = paging.ComputeRange(s.DataParams.Page, s.DataParams.PageSize, len(s.Items))
	}

	if s.Status == listquery.Success && len(s.Items) == 0 {
		v.Empty = true
		v.EmptyMessage = search.EmptyMessage(s.Narrowed(b.meta.DefaultFilter), b.meta.NoMatches, b.meta.NoRecords)
	}
	return v
}
