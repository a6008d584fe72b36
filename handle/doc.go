// Package handle provides the future value returned by task submission.
//
// A Handle is created alongside its task and returned to the frontend
// immediately, before the task has run. It is resolved exactly once: the
// first call to Resolve or Fail wins and later calls report
// ErrAlreadyResolved. Dependents observe resolution through OnResolve
// callbacks; the frontend observes it through Await or the engine's
// materializing operations.
//
// # Reading a handle
//
// Passing a handle as an input to another submission defers the read: the
// dependent task receives the materialized value only once the backend has
// produced it. Reading the value directly blocks:
//
//	h, _ := eng.Submit(op)
//	v, err := h.Await(ctx) // blocks until the task (and its chain) finishes
//
// # Lifetime
//
// The handle holds no reference to its task. When the worker resolves the
// handle and the tracker drops its registration, the task becomes garbage;
// the handle keeps only the cached value or error for as long as callers
// hold it.
package handle
