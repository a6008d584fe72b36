package handle

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/asyncflow/asyncflow/errors"
)

// Common errors.
var (
	// ErrAlreadyResolved indicates a second resolution attempt on a handle.
	ErrAlreadyResolved = stderrors.New("handle already resolved")

	// ErrNotResolved indicates a non-blocking read of a pending handle.
	ErrNotResolved = stderrors.New("handle not resolved")
)

// State represents the current state of a handle.
type State string

const (
	// StatePending indicates the owning task has not finished.
	StatePending State = "pending"

	// StateResolved indicates the task completed and the value is available.
	StateResolved State = "resolved"

	// StateFailed indicates the task failed, directly or through an ancestor.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true if the state is a final state.
func (s State) IsTerminal() bool {
	return s == StateResolved || s == StateFailed
}

// Handle is a future reference to a task's eventual result.
//
// A handle is resolved exactly once, by the worker that executes its task
// (or by the tracker, when an ancestor failure short-circuits execution).
// It never references the task that produces it; once the task is resolved
// and deregistered, the task is garbage while the handle lives on with the
// cached value or error.
type Handle struct {
	id string

	mu         sync.Mutex
	state      State
	value      interface{}
	err        error
	resolvedAt time.Time
	callbacks  []func(*Handle)

	done chan struct{}
}

// New creates a pending handle with the given ID.
func New(id string) *Handle {
	return &Handle{
		id:    id,
		state: StatePending,
		done:  make(chan struct{}),
	}
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done returns a channel closed when the handle reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Resolve sets the handle's value. Returns ErrAlreadyResolved if the handle
// is already terminal; the first resolution always wins.
func (h *Handle) Resolve(value interface{}) error {
	return h.settle(StateResolved, value, nil)
}

// Fail sets the handle's error. Returns ErrAlreadyResolved if the handle
// is already terminal.
func (h *Handle) Fail(err error) error {
	if err == nil {
		err = errors.Internal("handle failed with nil error", errors.WithHandleID(h.id))
	}
	return h.settle(StateFailed, nil, err)
}

// settle performs the single terminal transition and fires callbacks.
// Callbacks run on the resolver's goroutine, after Done is closed, so a
// callback that blocks on the handle itself cannot deadlock.
func (h *Handle) settle(state State, value interface{}, err error) error {
	h.mu.Lock()
	if h.state.IsTerminal() {
		h.mu.Unlock()
		return ErrAlreadyResolved
	}
	h.state = state
	h.value = value
	h.err = err
	h.resolvedAt = time.Now()
	cbs := h.callbacks
	h.callbacks = nil
	close(h.done)
	h.mu.Unlock()

	for _, cb := range cbs {
		cb(h)
	}
	return nil
}

// OnResolve registers fn to run exactly once when the handle becomes
// terminal. If the handle is already terminal, fn runs immediately on the
// calling goroutine. This is the tracker's readiness re-check trigger.
func (h *Handle) OnResolve(fn func(*Handle)) {
	h.mu.Lock()
	if h.state.IsTerminal() {
		h.mu.Unlock()
		fn(h)
		return
	}
	h.callbacks = append(h.callbacks, fn)
	h.mu.Unlock()
}

// Value returns the resolved value without blocking.
// Returns ErrNotResolved if the handle is still pending, or the failure
// if the handle failed.
func (h *Handle) Value() (interface{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case StateResolved:
		return h.value, nil
	case StateFailed:
		return nil, h.err
	default:
		return nil, ErrNotResolved
	}
}

// Err returns the failure, or nil if the handle is pending or resolved.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateFailed {
		return h.err
	}
	return nil
}

// ResolvedAt returns when the handle reached its terminal state.
// Zero for pending handles.
func (h *Handle) ResolvedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolvedAt
}

// Await blocks until the handle is terminal or ctx is done.
//
// On resolution it returns the value; on failure it returns the recorded
// error (a TASK_FAILED, PANIC or DEPENDENCY_FAILED engine error for
// worker-resolved handles). Abandoning the wait does not stop the task:
// there is no cancellation primitive, the backend runs it to completion.
func (h *Handle) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-h.done:
	default:
		select {
		case <-h.done:
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "await abandoned", errors.WithHandleID(h.id))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateFailed {
		return nil, h.err
	}
	return h.value, nil
}
