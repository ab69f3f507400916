package export

import (
	"context"
	"sync"
)

// DefaultQueueSize is the default number of pending raster jobs.
const DefaultQueueSize = 1000

// Job is one output image waiting to be rasterized.
// Ownership passes to the consumer on Push.
type Job struct {
	Index  int    // Output image number, starting at 0
	Markup string // Standalone svg document
	Width  int    // Target width in pixels
	Height int    // Target height in pixels
}

type message struct {
	job Job
	end bool
}

// Queue is a bounded FIFO of jobs between one producer and one consumer,
// terminated by an explicit end-of-work sentinel.
type Queue struct {
	ch       chan message
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewQueue creates a queue holding up to capacity pending jobs.
// A capacity below 1 uses DefaultQueueSize.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultQueueSize
	}
	return &Queue{
		ch:      make(chan message, capacity),
		stopped: make(chan struct{}),
	}
}

// Push enqueues a job, blocking while the queue is full.
// It returns ErrWorkerStopped once the consumer has called Stop, or the
// context error if ctx is done first.
func (q *Queue) Push(ctx context.Context, job Job) error {
	return q.send(ctx, message{job: job})
}

// Finish enqueues the end-of-work sentinel. No jobs may be pushed after it.
func (q *Queue) Finish(ctx context.Context) error {
	return q.send(ctx, message{end: true})
}

func (q *Queue) send(ctx context.Context, m message) error {
	// A stopped consumer wins over free capacity.
	select {
	case <-q.stopped:
		return ErrWorkerStopped
	default:
	}

	select {
	case q.ch <- m:
		return nil
	case <-q.stopped:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next job, blocking while the queue is empty.
// It returns false when the sentinel is reached or ctx is done; check
// ctx.Err() to tell the two apart.
func (q *Queue) Pop(ctx context.Context) (Job, bool) {
	select {
	case m := <-q.ch:
		if m.end {
			return Job{}, false
		}
		return m.job, true
	case <-ctx.Done():
		return Job{}, false
	}
}

// Stop marks the consumer as gone. Pending and future pushes fail with
// ErrWorkerStopped. Stop is idempotent.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopped)
	})
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
