// Package queue provides the backend half of the engine: an unbounded FIFO
// of ready tasks and the worker pool that consumes it.
//
// Only ready tasks enter the queue — the tracker never enqueues a task with
// an unmet dependency — so workers can execute whatever they dequeue without
// re-checking the graph. Ordering is FIFO among tasks with no relative
// dependency; across workers, independent tasks interleave freely.
//
// The queue is deliberately unbounded. Submission must never block the
// frontend, so a frontend that submits much faster than the backend drains
// grows the queue (and the memory pinned by every captured input) without
// limit. Callers bound outstanding work by awaiting a recent handle once
// per logical batch; the monitor package makes the growth observable.
package queue
