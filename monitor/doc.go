// Package monitor makes unbounded queue growth observable.
//
// Submission never blocks, so nothing in the engine itself stops a
// frontend from queuing work far faster than the backend drains it. The
// monitor samples the engine's outstanding counts on a ticker, exports
// them as telemetry, and warns when the backlog sits above the configured
// watermark — the cue for callers to insert a barrier per logical batch.
package monitor
