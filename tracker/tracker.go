package tracker

import (
	"sync"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
	"github.com/asyncflow/asyncflow/logging"
	"github.com/asyncflow/asyncflow/task"
)

// Sink receives tasks whose inputs are all resolved. The backend queue
// implements it; Enqueue must never block the caller.
type Sink interface {
	Enqueue(t *task.Task) error
}

// Tracker resolves read dependencies between tasks and decides when each
// task may be handed to the backend queue.
//
// The sole correctness invariant: a task reaches the sink only when every
// one of its declared input handles is resolved. A failed input fails the
// task instead, without executing its body, and the failure cascades to
// transitive dependents through their own input subscriptions.
type Tracker struct {
	sink Sink
	log  *logging.Logger

	mu sync.Mutex
	// remaining maps a waiting task's ID to its unresolved input count.
	// A task is deleted from the map the moment it is enqueued or failed,
	// dropping the tracker's reference to it.
	remaining map[string]int
}

// New creates a tracker feeding the given sink.
func New(sink Sink, log *logging.Logger) *Tracker {
	if log == nil {
		log = logging.New()
	}
	return &Tracker{
		sink:      sink,
		log:       log.WithComponent("tracker"),
		remaining: make(map[string]int),
	}
}

// Pending returns the number of tasks still waiting on unresolved inputs.
func (tr *Tracker) Pending() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.remaining)
}

// Register accepts a newly submitted task. If all inputs are already
// resolved the task is enqueued at once; if any input has already failed
// the task fails at once; otherwise the tracker subscribes to each
// unresolved input and re-checks readiness as they settle.
//
// Register runs on the frontend goroutine and never blocks it.
func (tr *Tracker) Register(t *task.Task) {
	tr.mu.Lock()

	unresolved := 0
	var upstream error
	var pending []*handle.Handle
	for _, in := range t.Inputs {
		switch in.State() {
		case handle.StateResolved:
			// Satisfied.
		case handle.StateFailed:
			upstream = in.Err()
		default:
			unresolved++
			pending = append(pending, in)
		}
		if upstream != nil {
			break
		}
	}

	if upstream != nil {
		tr.mu.Unlock()
		tr.fail(t, upstream)
		return
	}

	if unresolved == 0 {
		tr.mu.Unlock()
		tr.dispatch(t)
		return
	}

	tr.remaining[t.ID] = unresolved
	tr.mu.Unlock()

	// Subscriptions are registered outside the lock: an input that settles
	// between the snapshot and the registration fires the callback
	// immediately on this goroutine, and notify re-acquires the lock.
	// Each counted input fires exactly once, so the count stays exact.
	for _, in := range pending {
		in := in
		tr.OnInputSettled(t, in)
	}
}

// OnInputSettled subscribes the task to one input's terminal event.
func (tr *Tracker) OnInputSettled(t *task.Task, in *handle.Handle) {
	in.OnResolve(func(h *handle.Handle) {
		tr.notify(t, h)
	})
}

// notify is the readiness re-check, triggered by an input reaching a
// terminal state.
func (tr *Tracker) notify(t *task.Task, in *handle.Handle) {
	tr.mu.Lock()
	count, waiting := tr.remaining[t.ID]
	if !waiting {
		// Already enqueued or failed through another input.
		tr.mu.Unlock()
		return
	}

	if err := in.Err(); err != nil {
		delete(tr.remaining, t.ID)
		tr.mu.Unlock()
		tr.fail(t, err)
		return
	}

	count--
	if count > 0 {
		tr.remaining[t.ID] = count
		tr.mu.Unlock()
		return
	}

	delete(tr.remaining, t.ID)
	tr.mu.Unlock()
	tr.dispatch(t)
}

// dispatch moves a task with fully resolved inputs into the queue.
func (tr *Tracker) dispatch(t *task.Task) {
	if err := t.MarkReady(); err != nil {
		// Single-writer discipline makes this unreachable; surface loudly
		// rather than lose the task.
		tr.fail(t, err)
		return
	}
	tr.log.TaskReady(t.ID)
	if err := tr.sink.Enqueue(t); err != nil {
		_ = t.MarkFailed()
		tr.failOutput(t, errors.WrapWithCode(err, errors.ErrCodeEngineClosed,
			"queue rejected ready task", errors.WithTaskID(t.ID)))
	}
}

// fail marks the task failed because of an upstream error and fails its
// output handle, which in turn re-checks every dependent subscribed to it.
// The operation body never runs.
func (tr *Tracker) fail(t *task.Task, upstream error) {
	_ = t.MarkFailed()
	tr.failOutput(t, errors.DependencyFailed(t.ID, upstream))
}

func (tr *Tracker) failOutput(t *task.Task, err error) {
	tr.log.TaskFailed(t.ID, err)
	_ = t.Output.Fail(err)
}
