package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vk/matrixci/internal/action"
	"github.com/vk/matrixci/internal/ctxlog"
	"github.com/vk/matrixci/internal/matrix"
	"github.com/vk/matrixci/internal/pipeline"
	"github.com/vk/matrixci/internal/report"
	"github.com/vk/matrixci/internal/scheduler"
)

// Run expands the matrix, applies the exclusion rules, and executes the
// step pipeline for every runnable combination. It returns nil when every
// combination passed, ErrRunFailed when any failed, and ErrRunCancelled
// when ctx was cancelled mid-run.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startAuxServer(a.config.HealthcheckPort)
	}

	expanded, err := matrix.Expand(a.workflow.Axes)
	if err != nil {
		return err
	}
	runnable := matrix.Filter(expanded, a.workflow.Excludes)
	logger.Info("🧮 Matrix expanded.",
		"total", len(expanded),
		"excluded", len(expanded)-len(runnable),
		"runnable", len(runnable))

	if a.config.List {
		for _, c := range runnable {
			key := c.Key()
			if key == "" {
				key = "(no matrix)"
			}
			fmt.Fprintln(a.outW, key)
		}
		return nil
	}

	workers := a.config.Workers
	if workers <= 0 {
		workers = a.workflow.Workers
	}

	runner := pipeline.NewRunner(a.workflow.Steps, action.NewShell())
	sched := scheduler.New(runner, workers)

	started := time.Now()
	results := sched.RunAll(ctx, runnable)
	rep := report.New(runID, results, time.Since(started))

	if err := rep.Render(a.outW, a.config.Verbose); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	switch rep.Aggregate() {
	case pipeline.Failed:
		return ErrRunFailed
	case pipeline.Cancelled:
		return ErrRunCancelled
	default:
		return nil
	}
}
