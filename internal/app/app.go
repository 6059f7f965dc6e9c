package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/ctxlog"
)

// ErrRunFailed is returned by Run when at least one combination failed.
var ErrRunFailed = errors.New("one or more combinations failed")

// ErrRunCancelled is returned by Run when the run was aborted externally.
var ErrRunCancelled = errors.New("run cancelled")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	workflow *config.Workflow
}

// New is the constructor for the main application. It loads and validates
// the workflow document up front, so every run starts from a known-good
// configuration. A document that cannot be loaded or does not validate is
// a fatal startup error and panics; the entrypoint recovers it into a
// clean exit.
func New(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	workflow, err := loader.Load(ctx, appConfig.WorkflowPath)
	if err != nil {
		panic(fmt.Errorf("failed to load workflow: %w", err))
	}
	logger.Debug("Workflow loaded into unified model.")

	if err := config.Validate(ctx, workflow); err != nil {
		panic(err)
	}
	logger.Debug("Workflow validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		workflow: workflow,
	}
}

// Workflow returns the loaded workflow. This is primarily for testing.
func (a *App) Workflow() *config.Workflow {
	return a.workflow
}
