// Package threadpool provides the bounded worker pool the VFS uses to fan
// out parallel reads: a fixed-size pool accepting closures and returning
// handles, which the VFS submits tasks to and awaits completion of a batch
// against. The VFS owns one Pool for its lifetime (sized at
// VfsParams.MaxParallelOps); the Dispatcher hands it to the planner by
// reference, and no backend adapter holds it.
package threadpool

import (
	"github.com/sourcegraph/conc/pool"
)

// Handle is returned by Submit and resolved by Wait. It is a one-shot future
// for a single submitted task's error result.
type Handle struct {
	done chan error
}

// Pool is a fixed-size worker pool. Workers pull tasks from a single shared
// queue (conc's semaphore-bounded goroutine pool); Submit never blocks on a
// specific worker being free beyond the pool's own concurrency limit.
type Pool struct {
	size int
	p    *pool.Pool
}

// New creates a Pool with the given worker capacity. size must be >= 1;
// callers are expected to have already validated that (see pkg/config).
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size: size,
		p:    pool.New().WithMaxGoroutines(size),
	}
}

// Size returns the pool's worker capacity.
func (p *Pool) Size() int {
	return p.size
}

// Submit schedules task to run on the pool and returns a Handle to await its
// result. Submit itself does not block beyond the pool's own scheduling.
func (p *Pool) Submit(task func() error) Handle {
	h := Handle{done: make(chan error, 1)}
	p.p.Go(func() {
		h.done <- task()
	})
	return h
}

// Wait blocks until every handle in the batch has completed and returns each
// task's error in submission order (nil entries mean that task succeeded).
// Wait does not cancel outstanding tasks if one fails early — callers that
// need every sub-task to finish even after a peer fails (the parallel read
// planner) rely on this.
func Wait(handles []Handle) []error {
	errs := make([]error, len(handles))
	for i, h := range handles {
		errs[i] = <-h.done
	}
	return errs
}
