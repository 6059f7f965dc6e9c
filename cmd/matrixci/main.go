package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vk/matrixci/internal/app"
	"github.com/vk/matrixci/internal/cli"
	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/hcl"
	"github.com/vk/matrixci/internal/yaml"
)

// main is the entrypoint for the matrixci application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		if errors.Is(err, app.ErrRunFailed) {
			// The report has already been rendered.
			os.Exit(cli.ExitFailed)
		}
		if errors.Is(err, app.ErrRunCancelled) {
			os.Exit(cli.ExitCancelled)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on fatal startup errors (unreadable or invalid
	// workflow documents); recover them into a clean exit message.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	matrixciApp := app.New(outW, appConfig, loaderFor(appConfig.WorkflowPath))

	// An external interrupt cancels the run: in-flight steps are killed
	// and the affected combinations report as cancelled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return matrixciApp.Run(ctx)
}

// loaderFor picks the workflow loader by file extension: .yml/.yaml use
// the YAML loader, everything else is treated as HCL.
func loaderFor(path string) config.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.NewLoader()
	default:
		return hcl.NewLoader()
	}
}
