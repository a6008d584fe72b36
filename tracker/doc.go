// Package tracker decides when submitted tasks become runnable.
//
// Submission hands every new task to the tracker. Tasks whose inputs are
// all resolved go straight to the backend queue; the rest wait here, with
// one subscription per unresolved input. Each input that settles triggers
// a readiness re-check: the last successful input enqueues the task, the
// first failed input fails it without ever executing its body.
//
// Failure propagation is carried by the handles themselves. Failing a
// task's output handle fires the subscriptions of every dependent, so a
// single upstream failure walks the dependency graph one settled handle at
// a time — dependents learn of it at their own re-check, never by eager
// broadcast, and submissions downstream of a known failure are still
// accepted (they fail when awaited, not silently).
package tracker
