// Package workpool runs indexed tasks under a fixed number of permits.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is the permit count used when a pool is built with size <= 0.
// MaxSize caps the permit count regardless of the requested size.
const (
	DefaultSize = 3
	MaxSize     = 3
)

// Pool bounds how many tasks run at once.
type Pool struct {
	size int64
}

// New returns a pool with size permits, clamped to MaxSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return &Pool{size: int64(size)}
}

// Size reports the permit count.
func (p *Pool) Size() int {
	return int(p.size)
}

// Run calls fn for every index in [0, n) with at most Size calls in flight and
// returns once all calls have finished. Tasks are started in index order.
// Cancelling ctx stops tasks that have not acquired a permit yet; fn is still
// invoked for them so callers can record the cancellation per index.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	sem := semaphore.NewWeighted(p.size)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			fn(ctx, i)
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			fn(ctx, i)
		}(i)
	}
	wg.Wait()
}
