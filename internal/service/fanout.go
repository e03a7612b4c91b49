package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut calls fn for every index in [0, n) with at most limit calls in flight.
// Per-item errors never cancel the other items. Results keep input order and
// skip the failed indexes; errs is index-aligned with the input.
func fanOut[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, error)) ([]T, []error) {
	if limit <= 0 {
		limit = 1
	}
	values := make([]T, n)
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			values[i], errs[i] = fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]T, 0, n)
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			results = append(results, values[i])
		}
	}
	return results, errs
}
