// Package task defines the deferred unit of work flowing through the engine.
//
// A Task pairs an operation closure with the handles it reads and the
// handle it produces. Tasks move through the states
//
//	Pending → Ready → Running → Done
//	    ↘       (upstream or body failure)      ↘
//	      ─────────────→ Failed ←────────────────
//
// where Pending means "waiting on unresolved inputs" and Ready means
// "sitting in the backend queue". Task and handle are created together per
// submission; once the output handle is resolved and the tracker lets go of
// the task, nothing references it and it is reclaimed by the garbage
// collector while the handle lives on.
package task
