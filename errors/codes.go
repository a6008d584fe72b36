package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: timed-out barriers, a draining engine.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: a failed operation body, a failed dependency chain.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryResource indicates resource exhaustion.
	// Examples: queue growth past the configured watermark.
	CategoryResource ErrorCategory = "resource"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	// Examples: recovered panics, invariant violations.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	switch c {
	case CategoryTransient, CategoryResource:
		return true
	default:
		return false
	}
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for engine failure scenarios.
const (
	// Execution errors
	ErrCodeTaskFailed       ErrorCode = "TASK_FAILED"       // Operation body returned an error
	ErrCodeDependencyFailed ErrorCode = "DEPENDENCY_FAILED" // An ancestor task failed; body never ran
	ErrCodePanic            ErrorCode = "PANIC"             // Operation body panicked

	// Barrier errors
	ErrCodeCanceled ErrorCode = "CANCELED" // Await canceled by the caller's context
	ErrCodeTimeout  ErrorCode = "TIMEOUT"  // Await deadline exceeded

	// Submission errors
	ErrCodeEngineClosed ErrorCode = "ENGINE_CLOSED" // Submit after Close
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Nil operation or malformed submission

	// Resource errors
	ErrCodeBackpressure ErrorCode = "BACKPRESSURE" // Outstanding work above watermark

	// Internal errors
	ErrCodeInternal  ErrorCode = "INTERNAL"  // Unexpected internal error
	ErrCodeAssertion ErrorCode = "ASSERTION" // Invariant violation
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeCanceled, ErrCodeTimeout:
		return CategoryTransient

	case ErrCodeTaskFailed, ErrCodeDependencyFailed, ErrCodeEngineClosed, ErrCodeInvalidInput:
		return CategoryPermanent

	case ErrCodeBackpressure:
		return CategoryResource

	case ErrCodePanic, ErrCodeInternal, ErrCodeAssertion:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeTaskFailed:       "task execution failed",
	ErrCodeDependencyFailed: "dependency chain contains a failed task",
	ErrCodePanic:            "recovered from panic in operation body",
	ErrCodeCanceled:         "wait canceled",
	ErrCodeTimeout:          "wait deadline exceeded",
	ErrCodeEngineClosed:     "engine is closed",
	ErrCodeInvalidInput:     "invalid submission",
	ErrCodeBackpressure:     "outstanding work above watermark",
	ErrCodeInternal:         "internal error",
	ErrCodeAssertion:        "invariant violation",
}

// Description returns a human-readable description of the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return string(c)
}
