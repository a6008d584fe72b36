// Package engine is the frontend surface of the deferred execution
// model. Callers submit operations against handles; the engine tracks
// dependencies, queues ready tasks and executes them on a worker pool
// while the calling goroutine keeps going.
//
// Reads are where the caller rejoins the backend. WaitFor and WaitAll
// are explicit barriers; Scalar, Sprint and Export are materializing
// reads that await the handle's chain before converting its value.
// Everything else, Submit included, returns without blocking on task
// execution.
package engine
