// Package logging provides real-time log output for engine activity.
// Telemetry export is the durable record of what the engine did; this
// package provides optional console output for watching it live.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Engine event logging methods ---
// Called by the tracker, workers and barriers as tasks move through their
// lifecycle. Real-time output only; telemetry keeps the durable record.

// TaskSubmitted logs a new submission (real-time output).
func (l *Logger) TaskSubmitted(taskID string, inputs int) {
	l.Debug("task_submitted", map[string]interface{}{
		"task":   taskID,
		"inputs": inputs,
	})
}

// TaskReady logs a task whose inputs are all resolved.
func (l *Logger) TaskReady(taskID string) {
	l.Debug("task_ready", map[string]interface{}{
		"task": taskID,
	})
}

// TaskStarted logs a worker picking up a task.
func (l *Logger) TaskStarted(taskID string, worker int) {
	l.Debug("task_started", map[string]interface{}{
		"task":   taskID,
		"worker": worker,
	})
}

// TaskResolved logs successful completion.
func (l *Logger) TaskResolved(taskID string, duration time.Duration) {
	l.Debug("task_resolved", map[string]interface{}{
		"task":     taskID,
		"duration": duration.String(),
	})
}

// TaskFailed logs a failure, direct or inherited.
func (l *Logger) TaskFailed(taskID string, err error) {
	l.Error("task_failed", map[string]interface{}{
		"task":  taskID,
		"error": err.Error(),
	})
}

// Backpressure warns that outstanding work crossed the watermark.
// Every pending task pins its captured inputs in memory until it drains.
func (l *Logger) Backpressure(outstanding, watermark int) {
	l.Warn("backpressure", map[string]interface{}{
		"outstanding": outstanding,
		"watermark":   watermark,
	})
}

// DrainStart logs the beginning of a full drain (WaitAll or shutdown).
func (l *Logger) DrainStart(outstanding int) {
	l.Info("drain_start", map[string]interface{}{
		"outstanding": outstanding,
	})
}

// DrainComplete logs the end of a full drain.
func (l *Logger) DrainComplete(duration time.Duration) {
	l.Info("drain_complete", map[string]interface{}{
		"duration": duration.String(),
	})
}
