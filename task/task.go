package task

import (
	"context"
	"sync"
	"time"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
)

// Status represents the current state of a task.
type Status string

const (
	// StatusPending indicates the task is waiting on unresolved inputs.
	StatusPending Status = "pending"

	// StatusReady indicates every input is resolved and the task is queued.
	StatusReady Status = "ready"

	// StatusRunning indicates a worker is executing the operation body.
	StatusRunning Status = "running"

	// StatusDone indicates the task completed and its handle is resolved.
	StatusDone Status = "done"

	// StatusFailed indicates the task failed, directly or through an ancestor.
	StatusFailed Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Operation is the deferred unit of work. It receives the materialized
// values of the task's input handles, in submission order. Operations are
// plain function values: the engine never reflects on them.
type Operation func(ctx context.Context, inputs []interface{}) (interface{}, error)

// Task is a deferred operation with declared dependencies.
//
// State mutation follows a single-writer discipline: the tracker owns the
// task until it is handed to the queue (pending -> ready, or pending ->
// failed on upstream failure); after dequeue exactly one worker owns it
// (ready -> running -> done/failed). The mutex only makes those writes
// visible to concurrent readers such as the barriers and the monitor.
type Task struct {
	// ID is the unique identifier, shared with the output handle.
	ID string

	// Op is the operation body. Never executed for tasks failed upstream.
	Op Operation

	// Inputs are the handles this task reads. The task may only reach the
	// queue once every one of them is resolved.
	Inputs []*handle.Handle

	// Output is resolved exactly once when the task finishes.
	Output *handle.Handle

	mu          sync.Mutex
	status      Status
	submittedAt time.Time
	startedAt   time.Time
	finishedAt  time.Time
}

// New creates a pending task and its paired output handle.
func New(id string, op Operation, inputs []*handle.Handle) *Task {
	return &Task{
		ID:          id,
		Op:          op,
		Inputs:      inputs,
		Output:      handle.New(id),
		status:      StatusPending,
		submittedAt: time.Now(),
	}
}

// Status returns the current status.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SubmittedAt returns when the task was submitted.
func (t *Task) SubmittedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submittedAt
}

// StartedAt returns when a worker began executing the task.
// Zero if the task never ran.
func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// FinishedAt returns when the task reached a terminal status.
func (t *Task) FinishedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finishedAt
}

// MarkReady transitions pending -> ready. Called by the tracker, under its
// lock, immediately before handing the task to the queue.
func (t *Task) MarkReady() error {
	return t.transition(StatusPending, StatusReady)
}

// MarkRunning transitions ready -> running and records the start time.
// Called by the owning worker.
func (t *Task) MarkRunning() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusReady {
		return errors.Newf(errors.ErrCodeAssertion, "task %s cannot run from %s", t.ID, t.status)
	}
	t.status = StatusRunning
	t.startedAt = time.Now()
	return nil
}

// MarkDone transitions running -> done.
func (t *Task) MarkDone() error {
	return t.transition(StatusRunning, StatusDone)
}

// MarkFailed transitions to failed from any non-terminal status. A pending
// task fails when an ancestor fails; a running task fails when its body
// returns an error or panics.
func (t *Task) MarkFailed() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.IsTerminal() {
		return errors.Newf(errors.ErrCodeAssertion, "task %s already terminal (%s)", t.ID, t.status)
	}
	t.status = StatusFailed
	t.finishedAt = time.Now()
	return nil
}

func (t *Task) transition(from, to Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != from {
		return errors.Newf(errors.ErrCodeAssertion, "task %s: invalid transition %s -> %s (current %s)", t.ID, from, to, t.status)
	}
	t.status = to
	if to.IsTerminal() {
		t.finishedAt = time.Now()
	}
	return nil
}

// InputValues gathers the materialized values of all inputs, in order.
// It must only be called once the task is ready; an unresolved or failed
// input at this point is an invariant violation, not a user error.
func (t *Task) InputValues() ([]interface{}, error) {
	values := make([]interface{}, len(t.Inputs))
	for i, in := range t.Inputs {
		v, err := in.Value()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCodeAssertion,
				"input not materialized for ready task", errors.WithTaskID(t.ID), errors.WithHandleID(in.ID()))
		}
		values[i] = v
	}
	return values, nil
}
