package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/harvest/internal/adapters/config"
	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	loader := config.NewLoader(nil)

	cfg, err := loader.Load(tmpDir, "")
	require.NoError(t, err)

	if diff := cmp.Diff(domain.DefaultConfig(tmpDir), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FullFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
version: "1"
baseline: release
build: ["npm", "run", "build"]
concurrency: 2
environment:
  NODE_ENV: production
paths:
  inputs: incoming
  outputs: public
  workspaces: .worktrees
  inputDest: app/page.tsx
  artifact: out/index.html
`)

	cfg, err := config.NewLoader(nil).Load(tmpDir, "")
	require.NoError(t, err)

	want := &domain.Config{
		Baseline:     "release",
		BuildCommand: []string{"npm", "run", "build"},
		Concurrency:  2,
		Environment:  map[string]string{"NODE_ENV": "production"},
		Layout: domain.Layout{
			BaseDir:      tmpDir,
			InputDir:     "incoming",
			OutputDir:    "public",
			WorkspaceDir: ".worktrees",
			InputDest:    "app/page.tsx",
			Artifact:     "out/index.html",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
version: "1"
concurrency: 0
`)

	cfg, err := config.NewLoader(nil).Load(tmpDir, "")
	require.NoError(t, err)

	want := domain.DefaultConfig(tmpDir)
	want.Concurrency = 0
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	other := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(other, []byte("version: \"1\"\nbaseline: develop\n"), 0o600))

	cfg, err := config.NewLoader(nil).Load(tmpDir, other)
	require.NoError(t, err)
	assert.Equal(t, "develop", cfg.Baseline)
	assert.Equal(t, tmpDir, cfg.Layout.BaseDir)
}

func TestLoad_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "")

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	cfg, err := config.NewLoader(mockLogger).Load(tmpDir, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBaseline, cfg.Baseline)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid yaml",
			content: "version: [",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown key",
			content: "version: \"1\"\ntasks: {}\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unsupported version",
			content: "version: \"2\"\n",
			wantErr: domain.ErrUnsupportedConfigVersion,
		},
		{
			name:    "negative concurrency",
			content: "version: \"1\"\nconcurrency: -3\n",
			wantErr: domain.ErrInvalidConcurrency,
		},
		{
			name:    "escaping artifact",
			content: "version: \"1\"\npaths:\n  artifact: ../../etc/passwd\n",
			wantErr: domain.ErrPathOutsideWorkspace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)

			_, err := config.NewLoader(nil).Load(tmpDir, "")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoad_ReadError(t *testing.T) {
	tmpDir := t.TempDir()
	// A directory in place of the file cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, domain.ConfigFileName), 0o750))

	_, err := config.NewLoader(nil).Load(tmpDir, "")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}
