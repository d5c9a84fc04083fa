// Package ports defines the core interfaces for the application.
package ports

import "context"

// WorkspaceManager creates and destroys the isolated working copies builds run in.
//
//go:generate go run go.uber.org/mock/mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks
type WorkspaceManager interface {
	// Provision creates a fresh workspace at path, checked out at baseline.
	Provision(ctx context.Context, path, baseline string) error

	// Teardown forcibly removes the workspace at path.
	Teardown(ctx context.Context, path string) error

	// Prune drops the bookkeeping the repository at repoDir keeps for
	// workspaces whose directories no longer exist.
	Prune(ctx context.Context, repoDir string) error
}
