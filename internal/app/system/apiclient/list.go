package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
)

// Envelope is the API's offset pagination response. Count is the total
// across all pages.
type Envelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// List fetches one page from path and decodes the envelope.
func List[T any](ctx context.Context, c *Client, path string, q url.Values) (Envelope[T], error) {
	body, err := c.Get(ctx, path, q)
	if err != nil {
		return Envelope[T]{}, err
	}
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope[T]{}, fmt.Errorf("apiclient: decode %s: %w", path, err)
	}
	if env.Count < 0 {
		return Envelope[T]{}, fmt.Errorf("apiclient: decode %s: negative count %d", path, env.Count)
	}
	if env.Results == nil {
		env.Results = []T{}
	}
	return env, nil
}

// EncodeParams builds the outbound query for a parameter tuple: page,
// page_size, search (only when non-empty), sort_by and sort_order (only
// with a sort field), followed by the extra discriminators.
func EncodeParams(p listquery.Params, extra url.Values) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("page_size", strconv.Itoa(p.PageSize))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if !p.Sort.IsZero() {
		q.Set("sort_by", p.Sort.By)
		order := p.Sort.Order
		if order == "" {
			order = listquery.Ascending
		}
		q.Set("sort_order", string(order))
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}

// Endpoint adapts one API list path to listquery.Fetcher.
type Endpoint[T any] struct {
	Client *Client
	Path   string

	// Filters maps a filter tab to its request discriminators. Tabs
	// without an entry (such as "all") add nothing.
	Filters map[listquery.FilterKey]url.Values

	// Scope adds parameters derived from the staff member viewing the
	// listing. It must not modify shared state.
	Scope func(filter listquery.FilterKey, q url.Values)
}

// Fetch implements listquery.Fetcher.
func (e Endpoint[T]) Fetch(ctx context.Context, p listquery.Params) (listquery.Page[T], error) {
	q := EncodeParams(p, e.Filters[p.Filter])
	if e.Scope != nil {
		e.Scope(p.Filter, q)
	}
	env, err := List[T](ctx, e.Client, e.Path, q)
	if err != nil {
		return listquery.Page[T]{}, err
	}
	return listquery.Page[T]{Items: env.Results, TotalCount: env.Count}, nil
}
