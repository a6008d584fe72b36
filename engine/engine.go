package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/asyncflow/asyncflow/config"
	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
	"github.com/asyncflow/asyncflow/logging"
	"github.com/asyncflow/asyncflow/monitor"
	"github.com/asyncflow/asyncflow/queue"
	"github.com/asyncflow/asyncflow/shutdown"
	"github.com/asyncflow/asyncflow/task"
	"github.com/asyncflow/asyncflow/telemetry"
	"github.com/asyncflow/asyncflow/tracker"
)

// Engine is the execution context: the tracker, the backend queue, the
// worker pool and their instrumentation behind a single frontend surface.
// It is constructed explicitly and passed around; there is no process-wide
// instance.
type Engine struct {
	cfg   config.Config
	log   *logging.Logger
	tel   telemetry.Exporter
	que   *queue.Queue
	pool  *queue.Pool
	trk   *tracker.Tracker
	mon   *monitor.Monitor
	coord *shutdown.Coordinator

	idGen func() string

	mu           sync.Mutex
	outstanding  int
	waiters      []chan struct{}
	firstFailure error
	above        bool
	submitted    uint64
	completed    uint64
	failed       uint64

	closed atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets a custom task/handle ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.idGen = gen
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithTelemetry sets a custom telemetry exporter, overriding the one the
// configuration selects. The engine closes it on shutdown.
func WithTelemetry(tel telemetry.Exporter) Option {
	return func(e *Engine) {
		e.tel = tel
	}
}

// New creates and starts an engine. The workers are running when New
// returns; Close tears them down.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = config.Default().Workers
	}

	e := &Engine{
		cfg:   cfg,
		idGen: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logging.New()
		e.log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if e.tel == nil {
		tel, err := telemetry.NewExporter(cfg.Telemetry.Protocol, cfg.Telemetry.Endpoint)
		if err != nil {
			return nil, err
		}
		e.tel = tel
	}

	e.que = queue.New()
	e.pool = queue.NewPool(e.que, cfg.Workers, e.log)
	e.trk = tracker.New(e.que, e.log)
	e.pool.Start(context.Background())

	if cfg.SampleInterval > 0 {
		mon, err := monitor.New(cfg.SampleInterval, cfg.HighWatermark, e.sample, e.log, e.tel)
		if err != nil {
			return nil, err
		}
		e.mon = mon
		if err := e.mon.Start(); err != nil {
			return nil, err
		}
	}

	e.coord = shutdown.NewCoordinator(shutdown.Config{DefaultTimeout: cfg.ShutdownTimeout})
	e.coord.RegisterFuncWithPhase("frontend", func(ctx context.Context) error {
		e.closed.Store(true)
		return nil
	}, 5)
	e.coord.RegisterFuncWithPhase("drain", e.drain, 10)
	e.coord.RegisterFuncWithPhase("workers", func(ctx context.Context) error {
		e.que.Close()
		idle := make(chan struct{})
		go func() {
			e.pool.Wait()
			close(idle)
		}()
		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, 20)
	e.coord.RegisterFuncWithPhase("monitor", func(ctx context.Context) error {
		if e.mon != nil {
			e.mon.Stop()
		}
		return nil
	}, 30)
	e.coord.RegisterFuncWithPhase("telemetry", func(ctx context.Context) error {
		return e.tel.Close()
	}, 40)

	return e, nil
}

// Coordinator exposes the shutdown coordinator, e.g. to wire OS signals:
//
//	eng.Coordinator().HandleSignals()
func (e *Engine) Coordinator() *shutdown.Coordinator {
	return e.coord
}

// Submit registers an operation that reads the given handles and returns
// the handle for its eventual result. Submit is synchronous and never
// blocks: the returned handle is pending until the backend resolves it.
//
// Submitting downstream of an already-failed handle is accepted; the new
// task fails with a DependencyFailure when its readiness is checked, and
// the failure surfaces when the handle is awaited.
func (e *Engine) Submit(op task.Operation, inputs ...*handle.Handle) (*handle.Handle, error) {
	if e.closed.Load() {
		return nil, errors.EngineClosed("submit rejected")
	}
	if op == nil {
		return nil, errors.InvalidInput("nil operation")
	}
	for _, in := range inputs {
		if in == nil {
			return nil, errors.InvalidInput("nil input handle")
		}
	}

	t := task.New(e.idGen(), op, inputs)

	e.mu.Lock()
	e.submitted++
	e.outstanding++
	out := e.outstanding
	warn := false
	if e.cfg.HighWatermark > 0 && out > e.cfg.HighWatermark && !e.above {
		e.above = true
		warn = true
	}
	e.mu.Unlock()

	e.log.TaskSubmitted(t.ID, len(inputs))
	e.tel.LogEvent(telemetry.EventTaskSubmitted, map[string]interface{}{
		"task":   t.ID,
		"inputs": len(inputs),
	})
	if warn {
		e.log.Backpressure(out, e.cfg.HighWatermark)
		e.tel.LogEvent(telemetry.EventBackpressure, map[string]interface{}{
			"outstanding": out,
			"watermark":   e.cfg.HighWatermark,
		})
	}

	// Accounting subscription goes in before the tracker can settle the
	// handle, so even a task that fails during registration is counted.
	t.Output.OnResolve(func(h *handle.Handle) {
		e.onTerminal(t, h)
	})

	e.trk.Register(t)
	return t.Output, nil
}

// onTerminal is the engine's own resolution subscription: bookkeeping for
// Stats, WaitAll and the backpressure hysteresis.
func (e *Engine) onTerminal(t *task.Task, h *handle.Handle) {
	err := h.Err()

	e.mu.Lock()
	if err != nil {
		e.failed++
		if e.firstFailure == nil {
			e.firstFailure = err
		}
	} else {
		e.completed++
	}
	e.outstanding--
	if e.above && e.outstanding <= e.cfg.HighWatermark {
		e.above = false
	}
	var drained []chan struct{}
	if e.outstanding == 0 {
		drained = e.waiters
		e.waiters = nil
	}
	e.mu.Unlock()

	if err != nil {
		e.tel.LogEvent(telemetry.EventTaskFailed, map[string]interface{}{
			"task":  t.ID,
			"error": err.Error(),
		})
	} else {
		e.tel.LogEvent(telemetry.EventTaskResolved, map[string]interface{}{
			"task":        t.ID,
			"duration_ms": t.FinishedAt().Sub(t.SubmittedAt()).Milliseconds(),
		})
	}

	for _, ch := range drained {
		close(ch)
	}
}

// sample feeds the monitor.
func (e *Engine) sample() monitor.Sample {
	e.mu.Lock()
	out := e.outstanding
	e.mu.Unlock()
	return monitor.Sample{
		Outstanding:     out,
		QueueDepth:      e.que.Len(),
		WaitingOnInputs: e.trk.Pending(),
		Running:         e.pool.Running(),
	}
}

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	// Submitted, Completed and Failed are lifetime counters.
	Submitted uint64
	Completed uint64
	Failed    uint64

	// Outstanding counts tasks submitted but not yet terminal.
	Outstanding int

	// QueueDepth counts ready tasks waiting for a worker.
	QueueDepth int

	// WaitingOnInputs counts tasks held back by unresolved dependencies.
	WaitingOnInputs int

	// Running counts workers currently executing a task.
	Running int
}

// Stats returns a snapshot of engine activity.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	s := Stats{
		Submitted:   e.submitted,
		Completed:   e.completed,
		Failed:      e.failed,
		Outstanding: e.outstanding,
	}
	e.mu.Unlock()
	s.QueueDepth = e.que.Len()
	s.WaitingOnInputs = e.trk.Pending()
	s.Running = e.pool.Running()
	return s
}

// drain blocks until no task is pending, ready or running, or until ctx
// is done. Task failures do not fail a drain.
func (e *Engine) drain(ctx context.Context) error {
	e.mu.Lock()
	if e.outstanding == 0 {
		e.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	out := e.outstanding
	e.mu.Unlock()

	e.log.DrainStart(out)
	start := time.Now()

	select {
	case <-ch:
		took := time.Since(start)
		e.log.DrainComplete(took)
		e.tel.LogEvent(telemetry.EventDrain, map[string]interface{}{
			"duration_ms": took.Milliseconds(),
		})
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "drain abandoned")
	}
}

// Close shuts the engine down: stop accepting submissions, drain the
// queue, stop the workers, stop the monitor, flush telemetry. The drain
// is bounded by ctx. Close is idempotent; later calls return the first
// call's result.
func (e *Engine) Close(ctx context.Context) error {
	e.closed.Store(true)
	return e.coord.Shutdown(ctx)
}
