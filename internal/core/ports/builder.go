package ports

import (
	"context"
	"io"
)

// Builder runs the project build inside a workspace.
//
//go:generate go run go.uber.org/mock/mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type Builder interface {
	// Build runs command with dir as working directory.
	//
	// The env parameter contains additional environment variables in "KEY=VALUE" format.
	// The command's output is streamed to stdout and stderr; only its exit status is
	// reported, as a non-nil error when the command fails.
	Build(ctx context.Context, dir string, command, env []string, stdout, stderr io.Writer) error
}
