package refresh

import (
	"context"
	"sync"
	"time"
)

// Job names the unit of work to refresh, e.g. a feed name.
type Job struct {
	Key string
}

type Refresher struct {
	ch      chan Job
	inFly   sync.Map // key -> struct{}
	timeout time.Duration
	Do      func(ctx context.Context, j Job)
}

func New(capacity int, workerCount int, timeout time.Duration, do func(ctx context.Context, j Job)) *Refresher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r := &Refresher{ch: make(chan Job, capacity), timeout: timeout, Do: do}
	for i := 0; i < workerCount; i++ {
		go r.worker()
	}
	return r
}

// Enqueue reports whether the job was accepted. Jobs already in flight and
// jobs arriving while the queue is saturated are dropped.
func (r *Refresher) Enqueue(j Job) bool {
	if _, exists := r.inFly.LoadOrStore(j.Key, struct{}{}); exists {
		return false
	}
	select {
	case r.ch <- j:
		return true
	default:
		r.inFly.Delete(j.Key)
		return false
	}
}

// Close stops accepting work; queued jobs are still drained by the workers.
func (r *Refresher) Close() { close(r.ch) }

func (r *Refresher) worker() {
	for j := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		func() {
			defer func() {
				r.inFly.Delete(j.Key)
				cancel()
			}()
			if r.Do != nil {
				r.Do(ctx, j)
			}
		}()
	}
}
