package engine

import (
	"context"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
)

// WaitFor blocks until h is terminal or ctx is done. It returns the
// resolved value, the handle's failure, or a Canceled error when ctx
// expires first. Only h's own dependency chain has to finish; unrelated
// outstanding tasks keep running.
func (e *Engine) WaitFor(ctx context.Context, h *handle.Handle) (interface{}, error) {
	if h == nil {
		return nil, errors.InvalidInput("nil handle")
	}
	return h.Await(ctx)
}

// WaitAll blocks until every submitted task is terminal or ctx is done.
// The drain always runs to completion before a failure is reported: if
// any task failed, WaitAll returns the first failure recorded, after the
// rest of the graph has settled.
func (e *Engine) WaitAll(ctx context.Context) error {
	if err := e.drain(ctx); err != nil {
		return err
	}
	e.mu.Lock()
	ff := e.firstFailure
	e.mu.Unlock()
	return ff
}
