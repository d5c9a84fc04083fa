package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/harvest/internal/adapters/git"
	"go.trai.ch/harvest/internal/core/domain"
)

// initRepo creates a repository with a single commit on main.
func initRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{
			"-c", "user.name=harvest",
			"-c", "user.email=harvest@example.com",
			"-c", "commit.gpgsign=false",
		}, args...)...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "-q")
	run("symbolic-ref", "HEAD", "refs/heads/main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}\n"), 0o600))
	run("add", "package.json")
	run("commit", "-q", "-m", "initial")

	return dir
}

func worktreeList(t *testing.T, repo string) string {
	t.Helper()
	out, err := exec.Command("git", "-C", repo, "worktree", "list", "--porcelain").CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

func TestManager_ProvisionAndTeardown(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	ctx := context.Background()
	path := filepath.Join(repo, "feature-1")

	require.NoError(t, m.Provision(ctx, path, "main"))
	assert.FileExists(t, filepath.Join(path, "package.json"))
	assert.Contains(t, worktreeList(t, repo), "feature-1")

	require.NoError(t, m.Teardown(ctx, path))
	assert.NoDirExists(t, path)
	assert.NotContains(t, worktreeList(t, repo), "feature-1")
}

func TestManager_ProvisionSharedBaseline(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, m.Provision(ctx, filepath.Join(repo, id), "main"))
	}
	assert.FileExists(t, filepath.Join(repo, "a", "package.json"))
	assert.FileExists(t, filepath.Join(repo, "b", "package.json"))
}

func TestManager_ProvisionNestedWorkspaceDir(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	path := filepath.Join(repo, ".worktrees", "x")

	require.NoError(t, m.Provision(context.Background(), path, "main"))
	assert.FileExists(t, filepath.Join(path, "package.json"))
}

func TestManager_ProvisionUnknownBaseline(t *testing.T) {
	repo := initRepo(t)
	m := git.New()

	err := m.Provision(context.Background(), filepath.Join(repo, "x"), "does-not-exist")
	require.Error(t, err)
	assert.ErrorContains(t, err, "git worktree add failed")
}

func TestManager_TeardownRefusesPlainDirectory(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	path := filepath.Join(repo, "src")

	require.NoError(t, os.MkdirAll(path, 0o750))
	wip := filepath.Join(path, "wip.tsx")
	require.NoError(t, os.WriteFile(wip, []byte("uncommitted"), 0o600))

	err := m.Teardown(context.Background(), path)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrNotAWorkspace.Error())
	assert.FileExists(t, wip)
}

func TestManager_TeardownRefusesGitMetadata(t *testing.T) {
	repo := initRepo(t)
	m := git.New()

	err := m.Teardown(context.Background(), filepath.Join(repo, ".git"))
	require.Error(t, err)
	assert.DirExists(t, filepath.Join(repo, ".git"))
	assert.Contains(t, worktreeList(t, repo), "branch refs/heads/main")
}

func TestManager_TeardownUnregisteredWorktree(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	ctx := context.Background()
	path := filepath.Join(repo, "stale")

	require.NoError(t, m.Provision(ctx, path, "main"))
	// Losing the administrative entry leaves a directory git refuses to remove.
	require.NoError(t, os.RemoveAll(filepath.Join(repo, ".git", "worktrees", "stale")))

	require.NoError(t, m.Teardown(ctx, path))
	assert.NoDirExists(t, path)
}

func TestManager_TeardownRemovedDirectory(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	ctx := context.Background()
	path := filepath.Join(repo, "gone")

	require.NoError(t, m.Provision(ctx, path, "main"))
	require.NoError(t, os.RemoveAll(path))

	require.NoError(t, m.Teardown(ctx, path))
	assert.NotContains(t, worktreeList(t, repo), "gone")
}

func TestManager_Prune(t *testing.T) {
	repo := initRepo(t)
	m := git.New()
	ctx := context.Background()
	path := filepath.Join(repo, "orphan")

	require.NoError(t, m.Provision(ctx, path, "main"))
	require.NoError(t, os.RemoveAll(path))
	require.True(t, strings.Contains(worktreeList(t, repo), "orphan"))

	require.NoError(t, m.Prune(ctx, repo))
	assert.NotContains(t, worktreeList(t, repo), "orphan")
}

func TestManager_PruneOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	m := git.New()

	err := m.Prune(context.Background(), t.TempDir())
	require.Error(t, err)
}
