package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/harvest/internal/adapters/config"
	"go.trai.ch/harvest/internal/adapters/fs"
	"go.trai.ch/harvest/internal/adapters/logger"
	"go.trai.ch/harvest/internal/app"
	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type appTestEnv struct {
	app        *app.App
	base       string
	workspaces *mocks.MockWorkspaceManager
	builder    *mocks.MockBuilder
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

// setupApp wires the real filesystem and config adapters around mocked git and build tools.
func setupApp(t *testing.T, inputs ...string) appTestEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	env := appTestEnv{
		base:       t.TempDir(),
		workspaces: mocks.NewMockWorkspaceManager(ctrl),
		builder:    mocks.NewMockBuilder(ctrl),
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	}

	for _, id := range inputs {
		path := filepath.Join(env.base, domain.DefaultInputDir, id)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("export default () => <h1>"+id+"</h1>\n"), 0o600))
	}

	log := logger.New()
	env.app = app.New(config.NewLoader(log), env.workspaces, env.builder, fs.New(), log).
		WithOutput(env.stdout, env.stderr)
	return env
}

// fakeGit provisions workspaces as plain directories.
func (e appTestEnv) fakeGit() {
	e.workspaces.EXPECT().Provision(gomock.Any(), gomock.Any(), "main").
		DoAndReturn(func(_ context.Context, path, _ string) error {
			return os.MkdirAll(path, 0o750)
		}).AnyTimes()
	e.workspaces.EXPECT().Teardown(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, path string) error {
			return os.RemoveAll(path)
		}).AnyTimes()
}

// fakeBuild renders the delivered input into dist/index.html.
func fakeBuild(_ context.Context, dir string, _, _ []string, stdout, _ io.Writer) error {
	src, err := os.ReadFile(filepath.Join(dir, "src", "result.tsx"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, "dist"), 0o750); err != nil {
		return err
	}
	_, _ = io.WriteString(stdout, "bundling "+filepath.Base(dir)+"\n")
	return os.WriteFile(filepath.Join(dir, "dist", "index.html"), src, 0o600)
}

func TestApp_Run_AllSucceed(t *testing.T) {
	env := setupApp(t, "a", "b")
	env.fakeGit()
	env.builder.EXPECT().Build(gomock.Any(), gomock.Any(), []string{"bun", "run", "build"}, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(fakeBuild).Times(2)

	err := env.app.Run(context.Background(), []string{"a", "b"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		content, err := os.ReadFile(filepath.Join(env.base, "outputs", id, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "<h1>"+id+"</h1>")

		assert.NoFileExists(t, filepath.Join(env.base, "inputs", id), "inputs are moved into the workspace")
		assert.NoDirExists(t, filepath.Join(env.base, id), "workspaces are removed")
	}

	out := env.stdout.String()
	assert.Contains(t, out, "Processing 2 IDs: a, b")
	assert.Contains(t, out, "[a] bundling a")
	assert.Contains(t, out, "Total processed: 2")
	assert.Contains(t, out, "Successful: 2")
	assert.Contains(t, out, "Failed: 0")
	assert.Contains(t, out, "All builds completed successfully!")
}

func TestApp_Run_MissingInput(t *testing.T) {
	env := setupApp(t, "a")
	env.fakeGit()
	env.builder.EXPECT().Build(gomock.Any(), filepath.Join(env.base, "a"), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(fakeBuild)

	err := env.app.Run(context.Background(), []string{"a", "missing"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.ErrorIs(t, err, domain.ErrBatchFailed)

	assert.FileExists(t, filepath.Join(env.base, "outputs", "a", "index.html"))
	assert.NoDirExists(t, filepath.Join(env.base, "outputs", "missing"))
	assert.NoDirExists(t, filepath.Join(env.base, "missing"))

	out := env.stdout.String()
	assert.Contains(t, out, "Successful: 1")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "✓ a")
	assert.Contains(t, out, "✗ missing: ")
	assert.Contains(t, out, domain.ErrInputNotFound.Error())
	assert.NotContains(t, out, "All builds completed successfully!")
}

func TestApp_Run_BuildFailure(t *testing.T) {
	env := setupApp(t, "a")
	env.fakeGit()
	env.builder.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 1"))

	err := env.app.Run(context.Background(), []string{"a"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.ErrorIs(t, err, domain.ErrBatchFailed)

	assert.NoDirExists(t, filepath.Join(env.base, "a"), "workspace removed on the failure path")
	assert.Contains(t, env.stdout.String(), domain.ErrBuildFailed.Error())
	assert.Contains(t, env.stderr.String(), "[a]")
}

func TestApp_Run_FlagOverrides(t *testing.T) {
	env := setupApp(t, "a")
	env.workspaces.EXPECT().Provision(gomock.Any(), gomock.Any(), "release").
		DoAndReturn(func(_ context.Context, path, _ string) error {
			return os.MkdirAll(path, 0o750)
		})
	env.workspaces.EXPECT().Teardown(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, path string) error {
			return os.RemoveAll(path)
		})
	env.builder.EXPECT().Build(gomock.Any(), gomock.Any(), []string{"make", "site"}, []string{"MODE=ci"}, gomock.Any(), gomock.Any()).
		DoAndReturn(fakeBuild)

	cfgPath := filepath.Join(env.base, "harvest.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`version: "1"
build: ["make", "site"]
environment:
  MODE: ci
`), 0o600))

	one := 1
	err := env.app.Run(context.Background(), []string{"a"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base, Baseline: "release", Concurrency: &one},
	})
	require.NoError(t, err)
}

func TestApp_Run_InvalidIdentifiersHaveNoSideEffects(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr error
	}{
		{name: "none", ids: nil, wantErr: domain.ErrNoIdentifiers},
		{name: "duplicate", ids: []string{"a", "a"}, wantErr: domain.ErrDuplicateIdentifier},
		{name: "path", ids: []string{"../a"}, wantErr: domain.ErrInvalidIdentifier},
		{name: "input root", ids: []string{"a", "inputs"}, wantErr: domain.ErrReservedIdentifier},
		{name: "output root", ids: []string{"outputs"}, wantErr: domain.ErrReservedIdentifier},
		{name: "config file", ids: []string{"harvest.yaml"}, wantErr: domain.ErrReservedIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupApp(t, "a")

			err := env.app.Run(context.Background(), tt.ids, app.RunOptions{
				Options: app.Options{BaseDir: env.base},
			})
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
			assert.NoDirExists(t, filepath.Join(env.base, "outputs"))
			assert.Empty(t, env.stdout.String())
		})
	}
}

func TestApp_Run_NoIdentifiersIsSentinel(t *testing.T) {
	env := setupApp(t)

	err := env.app.Run(context.Background(), nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoIdentifiers)
}

func TestApp_Run_ConfigError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockFiles := mocks.NewMockFileSystem(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLoader.EXPECT().Load(gomock.Any(), "custom.yaml").Return(nil, errors.New("config load error"))

	a := app.New(mockLoader, nil, nil, mockFiles, mockLogger)
	err := a.Run(context.Background(), []string{"a"}, app.RunOptions{
		Options: app.Options{ConfigPath: "custom.yaml"},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "config load error")
}

func TestApp_Run_InvalidConcurrencyFlag(t *testing.T) {
	env := setupApp(t, "a")

	negative := -1
	err := env.app.Run(context.Background(), []string{"a"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base, Concurrency: &negative},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidConcurrency.Error())
}

func TestApp_Run_JSONLogs(t *testing.T) {
	env := setupApp(t, "a")
	env.fakeGit()
	env.builder.EXPECT().Build(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(fakeBuild)

	err := env.app.Run(context.Background(), []string{"a"}, app.RunOptions{
		Options: app.Options{BaseDir: env.base, JSONLogs: true},
	})
	require.NoError(t, err)
	assert.Contains(t, env.stderr.String(), `"id":"a"`)
}

func TestApp_Clean(t *testing.T) {
	env := setupApp(t)
	stale := filepath.Join(env.base, "a")
	require.NoError(t, os.MkdirAll(stale, 0o750))

	gomock.InOrder(
		env.workspaces.EXPECT().Teardown(gomock.Any(), stale).Return(nil),
		env.workspaces.EXPECT().Prune(gomock.Any(), env.base).Return(nil),
	)

	err := env.app.Clean(context.Background(), []string{"a", "b"}, app.CleanOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.NoError(t, err)
	assert.Contains(t, env.stderr.String(), "[b] No workspace to remove")
}

func TestApp_Clean_CollectsErrors(t *testing.T) {
	env := setupApp(t)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(env.base, id), 0o750))
	}

	env.workspaces.EXPECT().Teardown(gomock.Any(), filepath.Join(env.base, "a")).Return(errors.New("locked"))
	env.workspaces.EXPECT().Teardown(gomock.Any(), filepath.Join(env.base, "b")).Return(nil)
	env.workspaces.EXPECT().Prune(gomock.Any(), env.base).Return(errors.New("not a git repository"))

	err := env.app.Clean(context.Background(), []string{"a", "b"}, app.CleanOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrWorkspaceCleanFailed.Error())
	assert.ErrorContains(t, err, domain.ErrWorkspacePruneFailed.Error())
}

func TestApp_Clean_OnlyPrune(t *testing.T) {
	env := setupApp(t)
	env.workspaces.EXPECT().Prune(gomock.Any(), env.base).Return(nil)

	err := env.app.Clean(context.Background(), nil, app.CleanOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.NoError(t, err)
}

func TestApp_Clean_RejectsReservedIdentifiers(t *testing.T) {
	env := setupApp(t, "a")

	err := env.app.Clean(context.Background(), []string{"inputs"}, app.CleanOptions{
		Options: app.Options{BaseDir: env.base},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrReservedIdentifier.Error())
	assert.FileExists(t, filepath.Join(env.base, "inputs", "a"))
}
