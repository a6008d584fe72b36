package monitor

import (
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/asyncflow/asyncflow/logging"
	"github.com/asyncflow/asyncflow/telemetry"
)

// Common errors.
var (
	// ErrAlreadyStarted indicates the monitor is already running.
	ErrAlreadyStarted = stderrors.New("monitor already started")

	// ErrInvalidInterval indicates a non-positive sample interval.
	ErrInvalidInterval = stderrors.New("sample interval must be positive")
)

// Sample is one observation of the engine's outstanding work.
type Sample struct {
	// Outstanding counts tasks submitted but not yet terminal.
	Outstanding int

	// QueueDepth counts ready tasks waiting for a worker.
	QueueDepth int

	// WaitingOnInputs counts tasks held back by unresolved dependencies.
	WaitingOnInputs int

	// Running counts workers currently executing a task.
	Running int
}

// Source produces the current sample. The engine provides one.
type Source func() Sample

// Monitor periodically samples outstanding work, logs it, and exports it.
// When the outstanding count sits above the watermark it warns: every
// queued task pins its captured inputs, so a frontend that outruns the
// backend grows memory without bound until a barrier drains the backlog.
type Monitor struct {
	interval  time.Duration
	watermark int
	source    Source
	log       *logging.Logger
	tel       telemetry.Exporter

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a monitor. watermark <= 0 disables the warning.
func New(interval time.Duration, watermark int, source Source, log *logging.Logger, tel telemetry.Exporter) (*Monitor, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if log == nil {
		log = logging.New()
	}
	if tel == nil {
		tel = telemetry.NewNoopExporter()
	}
	return &Monitor{
		interval:  interval,
		watermark: watermark,
		source:    source,
		log:       log.WithComponent("monitor"),
		tel:       tel,
	}, nil
}

// Start begins sampling at the configured interval.
func (m *Monitor) Start() error {
	if m.running.Swap(true) {
		return ErrAlreadyStarted
	}
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.run()
	return nil
}

// Stop halts sampling. Safe to call multiple times.
func (m *Monitor) Stop() {
	if !m.running.Swap(false) {
		return
	}
	close(m.stopCh)
	<-m.doneCh
}

// run is the sampling loop.
func (m *Monitor) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.observe()
		case <-m.stopCh:
			return
		}
	}
}

// observe takes one sample and reports it.
func (m *Monitor) observe() {
	s := m.source()

	m.log.Debug("sample", map[string]interface{}{
		"outstanding": s.Outstanding,
		"queue_depth": s.QueueDepth,
		"waiting":     s.WaitingOnInputs,
		"running":     s.Running,
	})
	m.tel.LogEvent(telemetry.EventSample, map[string]interface{}{
		"outstanding": s.Outstanding,
		"queue_depth": s.QueueDepth,
		"waiting":     s.WaitingOnInputs,
		"running":     s.Running,
	})

	if m.watermark > 0 && s.Outstanding > m.watermark {
		m.log.Backpressure(s.Outstanding, m.watermark)
		m.tel.LogEvent(telemetry.EventBackpressure, map[string]interface{}{
			"outstanding": s.Outstanding,
			"watermark":   m.watermark,
		})
	}
}
