package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/matrixci/internal/app"
)

// Exit codes for the process exit contract: 0 all combinations passed,
// 1 at least one failed, 2 usage or configuration error, 130 the run was
// cancelled.
const (
	ExitFailed    = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("matrixci", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
matrixci - a build-matrix pipeline orchestrator.

Expands a declarative matrix of target environments, applies the exclusion
rules, and runs the step pipeline for every remaining combination. One
failing combination never aborts the others.

Usage:
  matrixci [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a workflow document (.hcl, .yml or .yaml).

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Path to the workflow document.")
	wFlag := flagSet.String("w", "", "Path to the workflow document (shorthand).")
	listFlag := flagSet.Bool("list", false, "Print the expanded, filtered combinations and exit without running.")
	verboseFlag := flagSet.Bool("verbose", false, "Include per-step outcomes in the report.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health/metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Concurrency limit for combinations. 0 uses the document's setting.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *workflowFlag != "" {
		path = *workflowFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Workflow path determined.", "path", path)

	if path == "" {
		slog.Debug("No workflow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid workers: must not be negative"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		WorkflowPath:    path,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Workers:         *workersFlag,
		List:            *listFlag,
		Verbose:         *verboseFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
