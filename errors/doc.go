// Package errors provides a structured failure taxonomy for asyncflow.
// It distinguishes failures that originated in a task's own operation body
// from failures inherited through the dependency chain, so that barriers
// and instrumentation can classify what they surface.
//
// # Error Categories
//
// Errors are classified into four categories:
//
//   - Transient: Temporary failures where retry may succeed (abandoned waits, etc.)
//   - Permanent: Failures where retry will not help (failed task bodies, failed chains)
//   - Resource: Resource exhaustion (outstanding work above the watermark)
//   - Internal: Unexpected errors indicating bugs or recovered panics
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - TASK_FAILED: the operation body returned an error
//   - DEPENDENCY_FAILED: an ancestor task failed; the body never ran
//   - PANIC: the operation body panicked and was recovered
//   - CANCELED / TIMEOUT: a blocking wait was abandoned by its context
//   - ENGINE_CLOSED: submission after shutdown
//   - And more...
//
// # Usage
//
// Create a new error:
//
//	err := errors.TaskFailed(taskID, cause)
//
// Propagate an upstream failure to a dependent without executing it:
//
//	err := errors.DependencyFailed(taskID, upstreamErr)
//
// Distinguish the two when a barrier surfaces a failure:
//
//	if errors.IsDependencyFailure(err) {
//	    root := errors.RootCause(err) // the ancestor's original failure
//	}
//
// # JSON Serialization
//
// All errors support JSON serialization for telemetry export:
//
//	data, err := json.Marshal(engErr)
package errors
