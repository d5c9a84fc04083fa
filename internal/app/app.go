// Package app implements the application layer for harvest.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/harvest/internal/adapters/linear"
	"go.trai.ch/harvest/internal/adapters/telemetry"
	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/harvest/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	workspaces   ports.WorkspaceManager
	builder      ports.Builder
	files        ports.FileSystem
	logger       ports.Logger

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance writing to the process streams.
func New(
	loader ports.ConfigLoader,
	workspaces ports.WorkspaceManager,
	builder ports.Builder,
	files ports.FileSystem,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		workspaces:   workspaces,
		builder:      builder,
		files:        files,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// outputSetter is implemented by loggers whose destination can be redirected.
type outputSetter interface {
	SetOutput(w io.Writer)
}

// jsonSetter is implemented by loggers that can switch to JSON records.
type jsonSetter interface {
	SetJSON(enable bool)
}

// WithOutput redirects the report, build output and logs.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	if s, ok := a.logger.(outputSetter); ok {
		s.SetOutput(stderr)
	}
	return a
}

// Options are the settings given on the command line.
type Options struct {
	// BaseDir is the directory inputs, outputs and workspaces are resolved against.
	BaseDir string
	// ConfigPath names the config file, relative to BaseDir unless absolute.
	ConfigPath string
	// Concurrency overrides the configured limit when non-nil.
	Concurrency *int
	// Baseline overrides the configured baseline when non-empty.
	Baseline string
	// JSONLogs switches progress logs to JSON.
	JSONLogs bool
}

// RunOptions configures Run.
type RunOptions struct {
	Options
}

// CleanOptions configures Clean.
type CleanOptions struct {
	Options
}

// Run builds every identifier and prints the batch report.
// It returns domain.ErrBatchFailed when at least one build failed.
func (a *App) Run(ctx context.Context, ids []string, opts RunOptions) error {
	if err := domain.ValidateIdentifiers(ids); err != nil {
		return err
	}

	cfg, err := a.loadConfig(opts.Options)
	if err != nil {
		return err
	}
	if err := checkIdentifiers(cfg, ids); err != nil {
		return err
	}

	root := cfg.Layout.OutputRoot()
	if err := a.files.EnsureDir(root); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrOutputDirFailed.Error()), "path", root)
	}

	renderer := linear.NewRenderer(a.stdout, a.stderr)
	tp := telemetry.NewTracerProvider(renderer)
	defer func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer("harvest").WithProvider(tp).WithRenderer(renderer)

	sched := scheduler.NewScheduler(a.workspaces, a.builder, a.files, a.logger, tracer)
	report := sched.Run(ctx, cfg, ids)

	if err := renderer.Stop(); err != nil {
		return err
	}

	if err := PrintReport(a.stdout, report); err != nil {
		return zerr.Wrap(err, "failed to print report")
	}

	if !report.OK() {
		return domain.ErrBatchFailed
	}
	return nil
}

// Clean force-removes the workspaces left behind for ids and prunes the
// repository's worktree list. With no identifiers only the prune runs.
func (a *App) Clean(ctx context.Context, ids []string, opts CleanOptions) error {
	if len(ids) > 0 {
		if err := domain.ValidateIdentifiers(ids); err != nil {
			return err
		}
	}

	cfg, err := a.loadConfig(opts.Options)
	if err != nil {
		return err
	}
	if err := checkIdentifiers(cfg, ids); err != nil {
		return err
	}

	var errs error
	for _, id := range ids {
		log := a.logger.For(id)
		workspace := cfg.Layout.WorkspacePath(id)

		exists, err := a.files.Exists(workspace)
		if err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrWorkspaceCleanFailed.Error()), "id", id))
			continue
		}
		if !exists {
			log.Info("No workspace to remove")
			continue
		}

		log.Info("Removing workspace " + workspace)
		if err := a.workspaces.Teardown(ctx, workspace); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, domain.ErrWorkspaceCleanFailed.Error()), "id", id))
			continue
		}
		log.Info("Removed workspace")
	}

	if err := a.workspaces.Prune(ctx, cfg.Layout.BaseDir); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, domain.ErrWorkspacePruneFailed.Error()))
	}

	return errs
}

// loadConfig resolves the base directory, reads the config file and applies
// command line overrides.
func (a *App) loadConfig(opts Options) (*domain.Config, error) {
	if opts.JSONLogs {
		if s, ok := a.logger.(jsonSetter); ok {
			s.SetJSON(true)
		}
	}

	base := opts.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	cfg, err := a.configLoader.Load(base, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Concurrency != nil {
		cfg.Concurrency = *opts.Concurrency
	}
	if opts.Baseline != "" {
		cfg.Baseline = opts.Baseline
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checkIdentifiers rejects the whole batch if any workspace would overlap a
// directory harvest depends on.
func checkIdentifiers(cfg *domain.Config, ids []string) error {
	for _, id := range ids {
		if err := cfg.Layout.CheckIdentifier(id); err != nil {
			return err
		}
	}
	return nil
}
