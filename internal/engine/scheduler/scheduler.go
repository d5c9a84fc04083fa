// Package scheduler runs one isolated build per identifier and collects the results.
package scheduler

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Scheduler processes batches of identifiers.
// Each task owns a disjoint workspace and output directory, so tasks share no state.
type Scheduler struct {
	workspaces ports.WorkspaceManager
	builder    ports.Builder
	files      ports.FileSystem
	logger     ports.Logger
	tracer     ports.Tracer
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	workspaces ports.WorkspaceManager,
	builder ports.Builder,
	files ports.FileSystem,
	logger ports.Logger,
	tracer ports.Tracer,
) *Scheduler {
	return &Scheduler{
		workspaces: workspaces,
		builder:    builder,
		files:      files,
		logger:     logger,
		tracer:     tracer,
	}
}

// Run processes every identifier and waits for all of them, whatever their outcome.
// At most cfg.Concurrency tasks run at once; a non-positive limit starts them all.
// Results are reported in the order of ids.
func (s *Scheduler) Run(ctx context.Context, cfg *domain.Config, ids []string) *domain.Report {
	start := time.Now()
	s.tracer.EmitPlan(ctx, ids)

	results := make([]domain.TaskResult, len(ids))

	var g errgroup.Group
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.RunTask(ctx, cfg, id)
			return nil
		})
	}
	_ = g.Wait()

	return &domain.Report{
		Results: results,
		Elapsed: time.Since(start),
	}
}

// RunTask builds a single identifier. It never panics and never returns without
// a result: every failure, including a recovered panic, becomes a failed TaskResult.
func (s *Scheduler) RunTask(ctx context.Context, cfg *domain.Config, id string) (result domain.TaskResult) {
	start := time.Now()
	log := s.logger.For(id)

	ctx, span := s.tracer.Start(ctx, id)
	defer span.End()

	t := &task{
		Scheduler: s,
		cfg:       cfg,
		layout:    cfg.Layout,
		id:        id,
		log:       log,
		out:       span,
	}

	defer func() {
		if r := recover(); r != nil {
			err := zerr.With(zerr.Wrap(domain.ErrTaskPanicked, fmt.Sprint(r)), "id", id)
			if t.touched {
				t.cleanup(ctx)
			}
			span.RecordError(err)
			result = domain.Failed(id, err, time.Since(start))
		}
	}()

	log.Info("Processing " + id)

	artifact, digest, err := t.run(ctx)
	if err != nil {
		if t.touched {
			t.cleanup(ctx)
		}
		span.RecordError(err)
		return domain.Failed(id, err, time.Since(start))
	}

	span.SetAttribute("artifact", artifact)
	span.SetAttribute("digest", digest)
	log.Info("Successfully processed " + id)
	return domain.Succeeded(id, artifact, digest, time.Since(start))
}

// task carries the state of one RunTask call.
type task struct {
	*Scheduler

	cfg    *domain.Config
	layout domain.Layout
	id     string
	log    ports.Logger
	out    ports.Span

	// touched is set once the workspace path may have been modified.
	touched bool
}

func (t *task) run(ctx context.Context) (artifact, digest string, err error) {
	input := t.layout.InputPath(t.id)
	workspace := t.layout.WorkspacePath(t.id)

	// Missing input fails before anything is touched.
	ok, err := t.files.Exists(input)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrInputStatFailed.Error()), "path", input)
	}
	if !ok {
		return "", "", zerr.With(zerr.Wrap(domain.ErrInputNotFound, "no input at "+input), "path", input)
	}

	t.touched = true

	stale, err := t.files.Exists(workspace)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrWorkspaceCleanFailed.Error()), "path", workspace)
	}
	if stale {
		t.log.Warn("Removing stale workspace " + workspace)
		if err := t.workspaces.Teardown(ctx, workspace); err != nil {
			return "", "", zerr.With(zerr.Wrap(err, domain.ErrWorkspaceCleanFailed.Error()), "path", workspace)
		}
	}

	t.log.Info("Creating workspace from " + t.cfg.Baseline)
	if err := t.workspaces.Provision(ctx, workspace, t.cfg.Baseline); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrWorkspaceProvisionFailed.Error()), "path", workspace)
	}

	dest := t.layout.InputDestPath(t.id)
	if err := t.files.EnsureDir(filepath.Dir(dest)); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrInputRelocateFailed.Error()), "path", dest)
	}
	if err := t.files.Move(input, dest); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrInputRelocateFailed.Error()), "path", dest)
	}

	t.log.Info("Building")
	if err := t.builder.Build(ctx, workspace, t.cfg.BuildCommand, environ(t.cfg.Environment), t.out, t.out); err != nil {
		return "", "", zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	outDir := t.layout.OutputDirFor(t.id)
	if err := t.files.EnsureDir(outDir); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrOutputDirFailed.Error()), "path", outDir)
	}

	built := t.layout.ArtifactPath(t.id)
	ok, err = t.files.Exists(built)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrArtifactStatFailed.Error()), "path", built)
	}
	if !ok {
		return "", "", zerr.With(zerr.Wrap(domain.ErrArtifactNotFound, "nothing at "+built), "path", built)
	}

	artifact = t.layout.OutputPath(t.id)
	digest, err = t.files.Copy(built, artifact)
	if err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrArtifactCopyFailed.Error()), "path", artifact)
	}
	t.log.Info("Copied build output to " + artifact)

	t.log.Info("Cleaning up workspace")
	if err := t.workspaces.Teardown(ctx, workspace); err != nil {
		return "", "", zerr.With(zerr.Wrap(err, domain.ErrWorkspaceTeardownFailed.Error()), "path", workspace)
	}

	return artifact, digest, nil
}

// cleanup removes the workspace if it still exists.
// Failures are logged and never replace the error that caused the cleanup.
func (t *task) cleanup(ctx context.Context) {
	workspace := t.layout.WorkspacePath(t.id)

	exists, err := t.files.Exists(workspace)
	if err != nil {
		t.log.Warn(fmt.Sprintf("Failed to check workspace %s: %v", workspace, err))
		return
	}
	if !exists {
		return
	}

	t.log.Info("Cleaning up workspace after failure")
	if err := t.workspaces.Teardown(ctx, workspace); err != nil {
		t.log.Warn(fmt.Sprintf("Failed to clean up workspace %s: %v", workspace, err))
	}
}

// environ renders env as sorted KEY=VALUE pairs.
func environ(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}
