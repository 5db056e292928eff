package resample

import (
	"sync"
)

// barrier is the completion barrier of one resize job.
//
// Every worker, the calling goroutine included, reports exactly once through
// done. wait blocks on a condition variable until all of them have reported.
// The counter is only read and written with mu held, so every write a worker
// made to the destination buffer before calling done is visible to the
// goroutine returning from wait.
type barrier struct {
	mu       sync.Mutex
	cond     sync.Cond
	total    int
	finished int
	err      error
}

func newBarrier(total int) *barrier {
	b := &barrier{total: total}
	b.cond.L = &b.mu
	return b
}

// done records one finished worker. A non-nil err is kept if it is the first
// failure reported.
func (b *barrier) done(err error) {
	b.mu.Lock()
	if err != nil && b.err == nil {
		b.err = err
	}
	b.finished++
	if b.finished >= b.total {
		b.cond.Broadcast()
	}
	b.mu.Unlock()
}

// wait blocks until every worker has reported and returns the first failure.
func (b *barrier) wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.finished < b.total {
		b.cond.Wait()
	}
	return b.err
}

// count returns the number of workers that have reported so far.
func (b *barrier) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}
