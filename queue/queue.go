package queue

import (
	stderrors "errors"
	"sync"

	"github.com/asyncflow/asyncflow/task"
)

// Common errors.
var (
	// ErrQueueClosed indicates a push to a closed queue.
	ErrQueueClosed = stderrors.New("queue closed")
)

// Queue is an unbounded FIFO of ready tasks.
//
// Enqueue never blocks: the frontend must be able to submit arbitrarily
// far ahead of the backend, at the documented cost of the queue (and every
// captured input it pins) growing without bound until a barrier drains it.
// Dequeue blocks until an item arrives or the queue is closed; a closed
// queue still drains its remaining items before Dequeue reports closed.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*task.Task
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a ready task. Never blocks.
func (q *Queue) Enqueue(t *task.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, t)
	q.cond.Signal()
	return nil
}

// Dequeue removes the oldest ready task, blocking while the queue is open
// and empty. Returns false once the queue is closed and fully drained.
func (q *Queue) Dequeue() (*task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil // release the reference for reclamation
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Reset the backing array so a drained queue holds no stale slots.
		q.items = nil
	}
	return t, true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting tasks and wakes every blocked Dequeue. Items
// already queued remain dequeueable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
