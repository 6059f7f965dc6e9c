package action

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/vk/matrixci/internal/ctxlog"
)

// Invoker runs one opaque step action to completion and returns its
// combined output. A nil error means the action exited successfully. The
// env slice is appended to the parent process environment.
type Invoker interface {
	Invoke(ctx context.Context, run string, env []string) (output string, err error)
}

// StartError marks an action that could not be started at all (missing
// interpreter, bad working directory) as opposed to one that ran and
// exited non-zero. Both fail the step the same way; reports distinguish
// them for diagnostics.
type StartError struct {
	Err error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return "action could not be started: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *StartError) Unwrap() error {
	return e.Err
}

// Shell invokes actions through `sh -c`, the way CI step actions are
// conventionally written. Stdout and stderr are captured interleaved into
// a single log, matching what a terminal would show.
type Shell struct {
	// Dir is the working directory for actions. Empty means the
	// orchestrator's own working directory.
	Dir string
}

// NewShell returns a Shell invoker running in the current directory.
func NewShell() *Shell {
	return &Shell{}
}

// Invoke implements Invoker. Cancellation of ctx kills the running
// process; the caller decides whether that counts as a failure or a
// cancelled run.
func (s *Shell) Invoke(ctx context.Context, run string, env []string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, "sh", "-c", run)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), env...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		logger.Debug("Action failed to start.", "error", err)
		return "", &StartError{Err: err}
	}

	err := cmd.Wait()
	logger.Debug("Action finished.", "exit_ok", err == nil, "output_bytes", out.Len())
	return out.String(), err
}
