// util/batch_processor.go

package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch runs fn over items with at most concurrency calls in flight
// and returns the results in input order. An item that cannot get a slot
// before ctx ends gets onCancel(ctx.Err()) instead. fn must not fail; failures
// are encoded in R.
func ProcessBatch[T, R any](
	ctx context.Context,
	items []T,
	concurrency int,
	fn func(ctx context.Context, item T) R,
	onCancel func(err error) R,
) []R {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]R, len(items))
	semaphore := make(chan struct{}, concurrency)

	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[i] = onCancel(ctx.Err())
				return nil
			}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				results[i] = onCancel(err)
				return nil
			}
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
