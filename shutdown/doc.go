// Package shutdown provides phased shutdown coordination for the engine.
//
// The engine's teardown has a strict order: stop accepting submissions,
// drain the queue, stop the workers, stop the monitor, flush telemetry.
// The coordinator encodes that order as numbered phases; handlers in the
// same phase run concurrently, lower phases run first, and the whole
// sequence executes exactly once no matter how many callers race into it.
//
//	coord := shutdown.NewCoordinator(shutdown.DefaultConfig())
//	coord.RegisterFuncWithPhase("drain", drainQueue, 10)
//	coord.RegisterFuncWithPhase("workers", stopWorkers, 20)
//	coord.RegisterFuncWithPhase("telemetry", flushTelemetry, 30)
//	coord.HandleSignals() // SIGTERM, SIGINT
//
//	err := coord.ShutdownWithTimeout(30 * time.Second)
package shutdown
