package domain

import "go.trai.ch/zerr"

var (
	// ErrNoIdentifiers is returned when a batch is started without any identifier.
	ErrNoIdentifiers = zerr.New("no identifiers specified")

	// ErrInvalidIdentifier is returned when an identifier cannot name a workspace directory.
	ErrInvalidIdentifier = zerr.New("invalid identifier")

	// ErrDuplicateIdentifier is returned when an identifier appears more than once in a batch.
	ErrDuplicateIdentifier = zerr.New("duplicate identifier")

	// ErrReservedIdentifier is returned when the workspace of an identifier would be,
	// or would contain, a directory harvest reads from or writes to.
	ErrReservedIdentifier = zerr.New("identifier names a reserved directory")

	// ErrNotAWorkspace is returned when a directory in the place of a workspace
	// is not a worktree of the repository. Such directories are never deleted.
	ErrNotAWorkspace = zerr.New("directory is not a worktree of this repository")

	// ErrInputNotFound is returned when the input file of an identifier does not exist.
	ErrInputNotFound = zerr.New("input file not found")

	// ErrInputStatFailed is returned when the input file cannot be inspected.
	ErrInputStatFailed = zerr.New("failed to stat input file")

	// ErrWorkspaceCleanFailed is returned when a stale workspace cannot be removed.
	ErrWorkspaceCleanFailed = zerr.New("failed to remove stale workspace")

	// ErrWorkspaceProvisionFailed is returned when the workspace cannot be created.
	ErrWorkspaceProvisionFailed = zerr.New("failed to create workspace")

	// ErrWorkspaceTeardownFailed is returned when the workspace cannot be removed.
	ErrWorkspaceTeardownFailed = zerr.New("failed to remove workspace")

	// ErrWorkspacePruneFailed is returned when stale worktree metadata cannot be pruned.
	ErrWorkspacePruneFailed = zerr.New("failed to prune workspaces")

	// ErrInputRelocateFailed is returned when the input file cannot be moved into the workspace.
	ErrInputRelocateFailed = zerr.New("failed to move input into workspace")

	// ErrBuildFailed is returned when the build command exits with a failure status.
	ErrBuildFailed = zerr.New("build command failed")

	// ErrArtifactNotFound is returned when the build succeeded but produced no artifact.
	ErrArtifactNotFound = zerr.New("build output not found")

	// ErrArtifactStatFailed is returned when the artifact cannot be inspected.
	ErrArtifactStatFailed = zerr.New("failed to stat build output")

	// ErrOutputDirFailed is returned when an output directory cannot be created.
	ErrOutputDirFailed = zerr.New("failed to create output directory")

	// ErrArtifactCopyFailed is returned when the artifact cannot be copied to the output directory.
	ErrArtifactCopyFailed = zerr.New("failed to copy build output")

	// ErrTaskPanicked is returned when a task panics instead of returning a result.
	ErrTaskPanicked = zerr.New("task panicked")

	// ErrBatchFailed is returned when at least one task of a batch failed.
	ErrBatchFailed = zerr.New("one or more builds failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedConfigVersion is returned when the config file declares an unknown version.
	ErrUnsupportedConfigVersion = zerr.New("unsupported config version")

	// ErrInvalidConcurrency is returned when the concurrency limit is negative.
	ErrInvalidConcurrency = zerr.New("concurrency must not be negative")

	// ErrEmptyBuildCommand is returned when no build command is configured.
	ErrEmptyBuildCommand = zerr.New("build command is empty")

	// ErrEmptyBaseline is returned when no baseline reference is configured.
	ErrEmptyBaseline = zerr.New("baseline reference is empty")

	// ErrPathOutsideWorkspace is returned when a configured path escapes its root directory.
	ErrPathOutsideWorkspace = zerr.New("path escapes its root directory")

	// ErrFailedToGetRoot is returned when the base directory cannot be made absolute.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of base directory")
)
