package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already an EngineError, its code, category and IDs are preserved.
// Otherwise, it creates a new Internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	// If it's already an EngineError, preserve its properties
	var engErr *Error
	if errors.As(err, &engErr) {
		wrapped := &Error{
			code:      engErr.code,
			category:  engErr.category,
			message:   message,
			cause:     err,
			metadata:  engErr.Metadata(),
			retryable: engErr.retryable,
			taskID:    engErr.taskID,
			handleID:  engErr.handleID,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Check for context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	// Default to internal error for unknown errors
	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsEngineError attempts to extract an EngineError from an error chain.
// Returns nil if no EngineError is found.
func AsEngineError(err error) EngineError {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.category == category
	}
	return false
}

// IsTaskFailure reports whether err originated in an operation body
// (including recovered panics).
func IsTaskFailure(err error) bool {
	return Is(err, ErrCodeTaskFailed) || Is(err, ErrCodePanic)
}

// IsDependencyFailure reports whether err was propagated from an ancestor
// task rather than produced by the task it was observed on.
func IsDependencyFailure(err error) bool {
	return Is(err, ErrCodeDependencyFailed)
}

// IsCanceled reports whether err came from an abandoned wait.
func IsCanceled(err error) bool {
	return Is(err, ErrCodeCanceled) || Is(err, ErrCodeTimeout)
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.Retryable()
	}
	// Default to not retryable for non-EngineErrors
	return false
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not an EngineError.
func Code(err error) ErrorCode {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
// Returns empty string if err is not an EngineError.
func Category(err error) ErrorCategory {
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.category
	}
	return ""
}

// RootCause returns the deepest error in the chain. For a DependencyFailed
// error this is the failure of the ancestor task that started the cascade.
func RootCause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}

// Join combines multiple errors into a single error.
// If all errors are nil, returns nil.
// Uses errors.Join from the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// RecoverPanic converts a recovered panic value into an Error.
func RecoverPanic(recovered interface{}) *Error {
	if recovered == nil {
		return nil
	}
	var message string
	switch v := recovered.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", v)
	}
	return New(ErrCodePanic, message, WithMetadata("panic_value", fmt.Sprintf("%T", recovered)))
}
