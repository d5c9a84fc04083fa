package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "harvest.yaml"

	// DefaultInputDir is the directory holding one input file per identifier.
	DefaultInputDir = "inputs"

	// DefaultOutputDir is the directory receiving one artifact directory per identifier.
	DefaultOutputDir = "outputs"

	// DefaultWorkspaceDir is the directory in which workspaces are created.
	// Workspaces live directly in the base directory, named after their identifier.
	DefaultWorkspaceDir = "."

	// DefaultInputDest is where the input file is placed inside a workspace.
	DefaultInputDest = "src/result.tsx"

	// DefaultArtifact is where the build leaves its artifact inside a workspace.
	DefaultArtifact = "dist/index.html"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Layout resolves the filesystem conventions of a batch against an explicit base
// directory. The base directory is never taken from the process working directory.
type Layout struct {
	BaseDir      string
	InputDir     string
	OutputDir    string
	WorkspaceDir string
	InputDest    string
	Artifact     string
}

// DefaultLayout returns the conventional layout rooted at baseDir.
func DefaultLayout(baseDir string) Layout {
	return Layout{
		BaseDir:      baseDir,
		InputDir:     DefaultInputDir,
		OutputDir:    DefaultOutputDir,
		WorkspaceDir: DefaultWorkspaceDir,
		InputDest:    DefaultInputDest,
		Artifact:     DefaultArtifact,
	}
}

// InputPath returns the path of the input file for id.
func (l Layout) InputPath(id string) string {
	return filepath.Join(l.BaseDir, l.InputDir, id)
}

// InputRoot returns the directory holding the input files.
func (l Layout) InputRoot() string {
	return filepath.Join(l.BaseDir, l.InputDir)
}

// WorkspaceRoot returns the directory in which workspaces are created.
func (l Layout) WorkspaceRoot() string {
	return filepath.Join(l.BaseDir, l.WorkspaceDir)
}

// WorkspacePath returns the path of the workspace for id.
func (l Layout) WorkspacePath(id string) string {
	return filepath.Join(l.BaseDir, l.WorkspaceDir, id)
}

// InputDestPath returns where the input file of id is placed inside its workspace.
func (l Layout) InputDestPath(id string) string {
	return filepath.Join(l.WorkspacePath(id), l.InputDest)
}

// ArtifactPath returns where the build of id is expected to leave its artifact.
func (l Layout) ArtifactPath(id string) string {
	return filepath.Join(l.WorkspacePath(id), l.Artifact)
}

// OutputRoot returns the directory shared by all output directories.
func (l Layout) OutputRoot() string {
	return filepath.Join(l.BaseDir, l.OutputDir)
}

// OutputDirFor returns the output directory of id.
func (l Layout) OutputDirFor(id string) string {
	return filepath.Join(l.OutputRoot(), id)
}

// OutputPath returns the final destination of the artifact of id.
func (l Layout) OutputPath(id string) string {
	return filepath.Join(l.OutputDirFor(id), filepath.Base(l.Artifact))
}

// CheckIdentifier rejects an identifier whose workspace would be, or would
// contain, the input, output or workspace root, the repository metadata or the
// config file. Removing such a workspace would destroy project data.
func (l Layout) CheckIdentifier(id string) error {
	workspace := l.WorkspacePath(id)
	for _, reserved := range []string{
		l.BaseDir,
		l.InputRoot(),
		l.OutputRoot(),
		l.WorkspaceRoot(),
		filepath.Join(l.BaseDir, ".git"),
		filepath.Join(l.BaseDir, ConfigFileName),
	} {
		if within(workspace, reserved) {
			return zerr.With(zerr.With(ErrReservedIdentifier, "id", id), "path", reserved)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || isLocal(rel)
}

// Validate checks that the paths placed inside a workspace stay inside it.
func (l Layout) Validate() error {
	for key, rel := range map[string]string{
		"inputDest": l.InputDest,
		"artifact":  l.Artifact,
	} {
		if !isLocal(rel) {
			return zerr.With(zerr.With(ErrPathOutsideWorkspace, "key", key), "path", rel)
		}
	}
	return nil
}

func isLocal(rel string) bool {
	if rel == "" || filepath.IsAbs(rel) {
		return false
	}
	clean := filepath.Clean(rel)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
