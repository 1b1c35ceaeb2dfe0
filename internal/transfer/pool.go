package transfer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs independent units of work with at most Limit in flight.
// Units report their own failures; the pool only stops scheduling new
// units once ctx is done.
type Pool struct {
	limit int
}

// NewPool returns a pool running at most limit units at once.
// A non-positive limit is treated as 1.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit}
}

func (p *Pool) Limit() int {
	return p.limit
}

// Run calls fn for indexes 0..n-1 and waits for all started calls to return.
// It returns ctx.Err() if ctx was done before every unit was scheduled.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	var g errgroup.Group
	g.SetLimit(p.limit)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

// RunBatches splits 0..n-1 into consecutive batches of size and runs each
// batch fully concurrently; a batch starts only after the previous one has
// settled.
func RunBatches(ctx context.Context, n, size int, fn func(ctx context.Context, i int)) error {
	if size < 1 {
		size = 1
	}
	for start := 0; start < n; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, n)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()
	}
	return ctx.Err()
}
