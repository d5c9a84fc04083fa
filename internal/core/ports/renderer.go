package ports

import "time"

// Renderer is the abstraction for presenting task progress.
// It decouples telemetry collection from presentation logic.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once before any task starts, with the identifiers in input order.
	OnPlanEmit(ids []string)

	// OnTaskStart is called when a task begins execution.
	// spanID: unique identifier for this task execution
	// name: the identifier the task processes
	OnTaskStart(spanID, name string, startTime time.Time)

	// OnTaskLog is called when a task's build emits output.
	// data may contain partial lines or ANSI sequences.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task finishes.
	// err is nil if the task succeeded.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// Stop flushes any buffered output.
	Stop() error
}
