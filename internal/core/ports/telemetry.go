package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span named after the identifier it covers.
	Start(ctx context.Context, name string) (context.Context, Span)
	// EmitPlan signals that a set of identifiers is planned for processing.
	EmitPlan(ctx context.Context, ids []string)
}

// Span represents the processing of one identifier.
// Writes to a Span carry the build output of that identifier.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
