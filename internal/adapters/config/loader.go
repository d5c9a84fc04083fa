// Package config provides the configuration loader for harvest.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	logger ports.Logger
}

// NewLoader creates a new FileConfigLoader.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: logger}
}

// Load reads the configuration file at path, resolved against baseDir when relative.
// A missing file yields the defaults rooted at baseDir.
func (l *FileConfigLoader) Load(baseDir, path string) (*domain.Config, error) {
	if path == "" {
		path = domain.ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	cfg := domain.DefaultConfig(baseDir)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	if file.Version == "" && l.logger != nil {
		l.logger.Warn("config " + path + " has no version, assuming " + CurrentVersion)
	}

	file.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes a harvest.yaml document. Unknown keys are rejected.
func Parse(data []byte) (*Harvestfile, error) {
	var file Harvestfile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}

	if file.Version != "" && file.Version != CurrentVersion {
		return nil, zerr.With(domain.ErrUnsupportedConfigVersion, "version", file.Version)
	}
	return &file, nil
}

// apply overlays the values present in the file onto cfg.
func (f *Harvestfile) apply(cfg *domain.Config) {
	if f.Baseline != "" {
		cfg.Baseline = f.Baseline
	}
	if len(f.Build) > 0 {
		cfg.BuildCommand = f.Build
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if len(f.Environment) > 0 {
		cfg.Environment = maps.Clone(f.Environment)
	}

	setIfNotEmpty(&cfg.Layout.InputDir, f.Paths.Inputs)
	setIfNotEmpty(&cfg.Layout.OutputDir, f.Paths.Outputs)
	setIfNotEmpty(&cfg.Layout.WorkspaceDir, f.Paths.Workspaces)
	setIfNotEmpty(&cfg.Layout.InputDest, f.Paths.InputDest)
	setIfNotEmpty(&cfg.Layout.Artifact, f.Paths.Artifact)
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
