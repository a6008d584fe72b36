package shutdown

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout indicates shutdown did not complete within the timeout.
var ErrTimeout = errors.New("shutdown timeout exceeded")

// Handler is implemented by components that need graceful shutdown.
// The context is cancelled when the shutdown deadline is reached;
// implementations should stop accepting work, finish what is in flight if
// time permits, and release resources.
type Handler interface {
	OnShutdown(ctx context.Context) error
}

// Func adapts a plain function to a Handler.
type Func func(ctx context.Context) error

// OnShutdown implements Handler.
func (f Func) OnShutdown(ctx context.Context) error {
	return f(ctx)
}

// Config configures the coordinator.
type Config struct {
	// DefaultTimeout bounds ShutdownWithTimeout when called with zero.
	// Default: 30 seconds.
	DefaultTimeout time.Duration

	// DefaultPhase is assigned to handlers registered without a phase.
	// Default: 100.
	DefaultPhase int

	// OnProgress, if set, is called as each handler finishes.
	OnProgress func(name string, phase int, took time.Duration, err error)
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout: 30 * time.Second,
		DefaultPhase:   100,
	}
}

// registration pairs a handler with its ordering phase.
type registration struct {
	name    string
	handler Handler
	phase   int
}
