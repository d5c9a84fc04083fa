// Package git provides workspaces backed by git worktrees.
package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.WorkspaceManager = (*Manager)(nil)

// Manager implements ports.WorkspaceManager by shelling out to git.
//
// Git invocations are serialized: concurrent worktree commands race on the
// repository's administrative files.
type Manager struct {
	mu  sync.Mutex
	bin string
}

// New creates a Manager using the git binary found on PATH.
func New() *Manager {
	return &Manager{bin: "git"}
}

// Provision runs "git worktree add -f <path> <baseline>" from the directory
// containing path. The force flag allows several worktrees to share a branch.
func (m *Manager) Provision(ctx context.Context, path, baseline string) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create workspace parent"), "path", parent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.git(ctx, parent, "worktree", "add", "-f", path, baseline)
}

// Teardown runs "git worktree remove --force <path>".
// When git no longer knows the worktree, the directory is deleted only if its
// .git file still points into this repository's worktree metadata. Any other
// directory is left alone and reported as ErrNotAWorkspace.
func (m *Manager) Teardown(ctx context.Context, path string) error {
	parent := filepath.Dir(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.git(ctx, parent, "worktree", "remove", "--force", path)
	if err == nil {
		return nil
	}

	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		// Nothing left on disk; only the registration may linger.
		return m.prune(ctx, parent)
	}

	if !m.isLinkedWorktree(ctx, parent, path) {
		return zerr.With(zerr.Wrap(err, domain.ErrNotAWorkspace.Error()), "path", path)
	}

	if rmErr := os.RemoveAll(path); rmErr != nil {
		return zerr.With(zerr.Wrap(rmErr, "failed to remove workspace directory"), "path", path)
	}
	return m.prune(ctx, parent)
}

// isLinkedWorktree reports whether path carries a ".git" file of the form
// "gitdir: <common>/worktrees/<name>" where <common> is the git directory of
// the repository containing repoDir.
func (m *Manager) isLinkedWorktree(ctx context.Context, repoDir, path string) bool {
	info, err := os.Lstat(filepath.Join(path, ".git"))
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	data, err := os.ReadFile(filepath.Join(path, ".git")) //nolint:gosec // path is a workspace
	if err != nil {
		return false
	}
	gitdir, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return false
	}
	gitdir = strings.TrimSpace(gitdir)
	if !filepath.IsAbs(gitdir) {
		gitdir = filepath.Join(path, gitdir)
	}
	admin := filepath.Dir(filepath.Clean(gitdir))
	if filepath.Base(admin) != "worktrees" {
		return false
	}

	out, err := m.output(ctx, repoDir, "rev-parse", "--git-common-dir")
	if err != nil {
		return false
	}
	common := strings.TrimSpace(out)
	if !filepath.IsAbs(common) {
		common = filepath.Join(repoDir, common)
	}

	return samePath(filepath.Dir(admin), common)
}

// samePath compares two paths after resolving symlinks where possible.
func samePath(a, b string) bool {
	resolve := func(p string) string {
		if r, err := filepath.EvalSymlinks(p); err == nil {
			return r
		}
		return filepath.Clean(p)
	}
	return resolve(a) == resolve(b)
}

// Prune runs "git worktree prune" in repoDir.
func (m *Manager) Prune(ctx context.Context, repoDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.prune(ctx, repoDir)
}

func (m *Manager) prune(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return m.git(ctx, dir, "worktree", "prune")
}

// git runs a git subcommand in dir. The combined output is attached to the
// returned error so failures explain themselves.
func (m *Manager) git(ctx context.Context, dir string, args ...string) error {
	_, err := m.output(ctx, dir, args...)
	return err
}

// output runs a git subcommand in dir and returns its standard output.
func (m *Manager) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, m.bin, args...) //nolint:gosec // fixed git subcommands
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		err = zerr.Wrap(err, "git "+strings.Join(args[:min(2, len(args))], " ")+" failed")
		err = zerr.With(err, "dir", dir)
		if msg := strings.TrimSpace(stdout.String() + stderr.String()); msg != "" {
			err = zerr.With(err, "output", msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
