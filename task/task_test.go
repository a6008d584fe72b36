package task

import (
	"context"
	"testing"

	"github.com/asyncflow/asyncflow/errors"
	"github.com/asyncflow/asyncflow/handle"
)

func noop(ctx context.Context, inputs []interface{}) (interface{}, error) {
	return nil, nil
}

func TestNew(t *testing.T) {
	in := handle.New("h-in")
	tk := New("t-1", noop, []*handle.Handle{in})

	if tk.Status() != StatusPending {
		t.Errorf("Status() = %v, want pending", tk.Status())
	}
	if tk.Output == nil || tk.Output.ID() != "t-1" {
		t.Error("output handle should share the task ID")
	}
	if tk.SubmittedAt().IsZero() {
		t.Error("SubmittedAt should be set")
	}
	if !tk.StartedAt().IsZero() {
		t.Error("StartedAt should be zero before execution")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	tk := New("t-2", noop, nil)

	if err := tk.MarkReady(); err != nil {
		t.Fatalf("MarkReady failed: %v", err)
	}
	if err := tk.MarkRunning(); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	if tk.StartedAt().IsZero() {
		t.Error("StartedAt should be set after MarkRunning")
	}
	if err := tk.MarkDone(); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if !tk.Status().IsTerminal() {
		t.Error("done should be terminal")
	}
	if tk.FinishedAt().IsZero() {
		t.Error("FinishedAt should be set")
	}
}

func TestInvalidTransitions(t *testing.T) {
	tk := New("t-3", noop, nil)

	// Cannot run before ready.
	if err := tk.MarkRunning(); !errors.Is(err, errors.ErrCodeAssertion) {
		t.Errorf("MarkRunning from pending = %v, want assertion error", err)
	}
	// Cannot complete before running.
	if err := tk.MarkDone(); !errors.Is(err, errors.ErrCodeAssertion) {
		t.Errorf("MarkDone from pending = %v, want assertion error", err)
	}

	// Failure is reachable from any non-terminal state, but is final.
	if err := tk.MarkFailed(); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if err := tk.MarkFailed(); !errors.Is(err, errors.ErrCodeAssertion) {
		t.Errorf("MarkFailed on terminal task = %v, want assertion error", err)
	}
	if err := tk.MarkReady(); !errors.Is(err, errors.ErrCodeAssertion) {
		t.Errorf("MarkReady on failed task = %v, want assertion error", err)
	}
}

func TestInputValues(t *testing.T) {
	a := handle.New("h-a")
	b := handle.New("h-b")
	tk := New("t-4", noop, []*handle.Handle{a, b})

	// Unresolved input is an invariant violation at gather time.
	if _, err := tk.InputValues(); err == nil {
		t.Error("InputValues with pending input should fail")
	}

	a.Resolve(1)
	b.Resolve(2)

	values, err := tk.InputValues()
	if err != nil {
		t.Fatalf("InputValues failed: %v", err)
	}
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Errorf("InputValues() = %v, want [1 2]", values)
	}
}
