package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

// ============================================================================
// 1. Error creation with different codes/categories
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		code         ErrorCode
		message      string
		wantCategory ErrorCategory
	}{
		{"task_failed", ErrCodeTaskFailed, "task failed", CategoryPermanent},
		{"dependency_failed", ErrCodeDependencyFailed, "upstream failure", CategoryPermanent},
		{"canceled", ErrCodeCanceled, "wait canceled", CategoryTransient},
		{"timeout", ErrCodeTimeout, "wait timed out", CategoryTransient},
		{"backpressure", ErrCodeBackpressure, "queue too deep", CategoryResource},
		{"panic", ErrCodePanic, "index out of range", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", err.Code(), tt.code)
			}
			if err.Category() != tt.wantCategory {
				t.Errorf("Category() = %v, want %v", err.Category(), tt.wantCategory)
			}
			if err.Error() != tt.message {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.message)
			}
			if err.Timestamp().IsZero() {
				t.Error("Timestamp() should not be zero")
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeInvalidInput, "task %s has nil operation", "t-1")
	want := "task t-1 has nil operation"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestFromCode(t *testing.T) {
	err := FromCode(ErrCodeEngineClosed)
	if err.Code() != ErrCodeEngineClosed {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeEngineClosed)
	}
	// Should use the default description
	if err.Error() != "engine is closed" {
		t.Errorf("Error() = %v, want %v", err.Error(), "engine is closed")
	}
}

// ============================================================================
// 2. Failure constructors and propagation chains
// ============================================================================

func TestTaskFailed(t *testing.T) {
	cause := errors.New("division by zero")
	err := TaskFailed("t-42", cause)

	if err.Code() != ErrCodeTaskFailed {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeTaskFailed)
	}
	if err.TaskID() != "t-42" {
		t.Errorf("TaskID() = %v, want t-42", err.TaskID())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap chain")
	}
	if !IsTaskFailure(err) {
		t.Error("IsTaskFailure should be true")
	}
	if IsDependencyFailure(err) {
		t.Error("IsDependencyFailure should be false for a direct failure")
	}
}

func TestDependencyFailedChain(t *testing.T) {
	root := errors.New("boom")
	first := TaskFailed("t-1", root)
	second := DependencyFailed("t-2", first)
	third := DependencyFailed("t-3", second)

	if !IsDependencyFailure(third) {
		t.Error("IsDependencyFailure should be true")
	}
	if IsTaskFailure(third) {
		t.Error("IsTaskFailure should be false for an inherited failure")
	}
	// The original failure stays reachable no matter how deep the dependent.
	if !errors.Is(third, root) {
		t.Error("root cause lost in propagation chain")
	}
	if RootCause(third) != root {
		t.Errorf("RootCause() = %v, want %v", RootCause(third), root)
	}
}

// ============================================================================
// 3. Retryable vs non-retryable errors
// ============================================================================

func TestRetryable(t *testing.T) {
	if !New(ErrCodeTimeout, "t").Retryable() {
		t.Error("timeout should be retryable by default")
	}
	if New(ErrCodeTaskFailed, "t").Retryable() {
		t.Error("task failure should not be retryable by default")
	}

	// Explicit override wins over the category default.
	err := New(ErrCodeTaskFailed, "t", WithRetryable(true))
	if !err.Retryable() {
		t.Error("WithRetryable(true) should override the default")
	}
}

func TestIsRetryableNonEngineError(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors default to non-retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
}

// ============================================================================
// 4. Wrapping
// ============================================================================

func TestWrapPreservesProperties(t *testing.T) {
	inner := DependencyFailed("t-9", errors.New("upstream"))
	wrapped := Wrap(inner, "awaiting handle")

	if wrapped.Code() != ErrCodeDependencyFailed {
		t.Errorf("Code() = %v, want %v", wrapped.Code(), ErrCodeDependencyFailed)
	}
	if wrapped.TaskID() != "t-9" {
		t.Errorf("TaskID() = %v, want t-9", wrapped.TaskID())
	}
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped error should unwrap to inner")
	}
}

func TestWrapContextErrors(t *testing.T) {
	err := Wrap(context.Canceled, "await abandoned")
	if err.Code() != ErrCodeCanceled {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeCanceled)
	}

	err = Wrap(context.DeadlineExceeded, "await abandoned")
	if err.Code() != ErrCodeTimeout {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeTimeout)
	}

	if !IsCanceled(err) {
		t.Error("IsCanceled should be true for a timed-out wait")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapUnknownDefaultsInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("mystery"), "context")
	if err.Code() != ErrCodeInternal {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeInternal)
	}
}

// ============================================================================
// 5. Panic recovery
// ============================================================================

func TestRecoverPanic(t *testing.T) {
	err := RecoverPanic("index out of range")
	if err.Code() != ErrCodePanic {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodePanic)
	}
	if !IsTaskFailure(err) {
		t.Error("panics count as task failures")
	}
	if err.Metadata()["panic_value"] != "string" {
		t.Errorf("panic_value metadata = %v, want string", err.Metadata()["panic_value"])
	}

	if RecoverPanic(nil) != nil {
		t.Error("RecoverPanic(nil) should return nil")
	}
}

// ============================================================================
// 6. JSON round trip
// ============================================================================

func TestJSONRoundTrip(t *testing.T) {
	orig := TaskFailed("t-7", errors.New("kaboom"), WithHandleID("h-7"), WithMetadata("op", "add"))

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Error
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Code() != orig.Code() {
		t.Errorf("Code() = %v, want %v", decoded.Code(), orig.Code())
	}
	if decoded.TaskID() != "t-7" {
		t.Errorf("TaskID() = %v, want t-7", decoded.TaskID())
	}
	if decoded.HandleID() != "h-7" {
		t.Errorf("HandleID() = %v, want h-7", decoded.HandleID())
	}
	if decoded.Metadata()["op"] != "add" {
		t.Errorf("metadata op = %v, want add", decoded.Metadata()["op"])
	}
}
