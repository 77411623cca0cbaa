/*
Package parallel provides the external parallel-for primitive the
SrIndex build path requires (one worker per sentinel), modeled on
bio.go's ManyToChannel: an errgroup.Group fans work out across
goroutines and the first error cancels the shared context.
*/
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// For runs fn(i) for every i in [0, n) concurrently, one goroutine per
// i, and waits for all of them to finish. If any fn(i) returns a
// non-nil error, For returns the first such error (in completion
// order) after every goroutine has returned; fn should check ctx.Err()
// if it wants to exit early once another worker has failed.
func For(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			return fn(groupCtx, i)
		})
	}
	return group.Wait()
}
