package queue

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/logging"
	"github.com/asyncflow/asyncflow/task"
)

// Pool runs a fixed set of workers over a queue. Each worker dequeues a
// ready task, executes its operation body, and resolves the paired handle
// exactly once. Independent tasks run concurrently across workers; tasks
// in a dependency chain never can, because a dependent only enters the
// queue after its ancestors' handles are resolved.
type Pool struct {
	queue *Queue
	log   *logging.Logger

	ctx     context.Context
	size    int
	wg      sync.WaitGroup
	started sync.Once

	mu      sync.Mutex
	running int
}

// NewPool creates a pool of size workers consuming q.
func NewPool(q *Queue, size int, log *logging.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if log == nil {
		log = logging.New()
	}
	return &Pool{
		queue: q,
		log:   log.WithComponent("worker"),
		size:  size,
	}
}

// Size returns the configured parallelism degree.
func (p *Pool) Size() int {
	return p.size
}

// Running returns the number of workers currently executing a task.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start launches the workers. ctx is passed to every operation body;
// canceling it does not cancel queued tasks (there is no cancellation
// primitive), but operations may observe it for their own deadlines.
// Start is idempotent.
func (p *Pool) Start(ctx context.Context) {
	p.started.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		p.ctx = ctx
		for i := 0; i < p.size; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Wait blocks until every worker has exited. Workers exit only after the
// queue is closed and drained.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// worker is the backend consume loop.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		t, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		p.mu.Lock()
		p.running++
		p.mu.Unlock()

		p.execute(id, t)

		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}
}

// execute runs one task and settles its output handle.
func (p *Pool) execute(workerID int, t *task.Task) {
	if err := t.MarkRunning(); err != nil {
		_ = t.MarkFailed()
		p.failTask(t, err)
		return
	}
	p.log.TaskStarted(t.ID, workerID)
	start := time.Now()

	inputs, err := t.InputValues()
	if err != nil {
		_ = t.MarkFailed()
		p.failTask(t, err)
		return
	}

	value, err := p.invoke(t, inputs)
	if err != nil {
		_ = t.MarkFailed()
		p.failTask(t, err)
		return
	}

	_ = t.MarkDone()
	_ = t.Output.Resolve(value)
	p.log.TaskResolved(t.ID, time.Since(start))
}

// invoke calls the operation body with panic recovery. A panicking body
// fails its own task like any other error instead of killing the worker.
func (p *Pool) invoke(t *task.Task, inputs []interface{}) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("operation panicked", map[string]interface{}{
				"task":  t.ID,
				"panic": fmt.Sprintf("%v", r),
				"stack": string(debug.Stack()),
			})
			err = errors.Wrap(errors.RecoverPanic(r),
				fmt.Sprintf("task %s panicked", t.ID), errors.WithTaskID(t.ID))
		}
	}()
	value, err = t.Op(p.ctx, inputs)
	if err != nil {
		err = errors.TaskFailed(t.ID, err)
	}
	return value, err
}

// failTask records the failure on the output handle, which is what
// notifies dependents and awaiting frontends.
func (p *Pool) failTask(t *task.Task, err error) {
	p.log.TaskFailed(t.ID, err)
	_ = t.Output.Fail(err)
}
