package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
)

// The materializing operations below are the blocking read side of the
// frontend: each one awaits the handle's chain before converting the
// value. They are the only calls besides WaitFor and WaitAll that block
// on task completion.

// Scalar awaits h and returns its value as a float64. Non-numeric values
// are an InvalidInput error.
func (e *Engine) Scalar(ctx context.Context, h *handle.Handle) (float64, error) {
	v, err := e.WaitFor(ctx, h)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, errors.InvalidInput(fmt.Sprintf("value of type %T is not a scalar", v),
			errors.WithHandleID(h.ID()))
	}
}

// Sprint awaits h and renders its value as a string.
func (e *Engine) Sprint(ctx context.Context, h *handle.Handle) (string, error) {
	v, err := e.WaitFor(ctx, h)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", v), nil
}

// Export awaits h and serializes its value as JSON.
func (e *Engine) Export(ctx context.Context, h *handle.Handle) ([]byte, error) {
	v, err := e.WaitFor(ctx, h)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "export serialization failed",
			errors.WithHandleID(h.ID()))
	}
	return data, nil
}
