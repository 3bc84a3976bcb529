package listquery

import "context"

// Fetcher loads one page for a parameter tuple. Implementations must
// honour ctx cancellation; the controller cancels requests it no
// longer wants.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, p Params) (Page[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, p Params) (Page[T], error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, p Params) (Page[T], error) {
	return f(ctx, p)
}
