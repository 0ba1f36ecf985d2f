package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fetchFunc is one independent read of an aggregation.
type fetchFunc func(ctx context.Context) error

// fetchAll runs every read concurrently and waits for all of them. The first
// failure wins: it cancels the context passed to the other reads and is the
// only error returned.
func fetchAll(ctx context.Context, fetches ...fetchFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fetches {
		g.Go(func() error {
			return f(gctx)
		})
	}
	return g.Wait()
}

// into adapts a typed read so that its result lands in dst.
func into[T any](dst *T, fn func(ctx context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
