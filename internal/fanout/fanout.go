// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Bounded fan-out over independent inputs with ordered results.

package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map runs fn over items with at most limit calls in flight and returns
// results in the same order as items. limit < 1 is treated as 1, which
// makes Map strictly sequential. The first error cancels ctx for the
// remaining calls and is returned.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, int, T) (R, error)) ([]R, error) {
	if limit < 1 {
		limit = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	results := make([]R, len(items))
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
