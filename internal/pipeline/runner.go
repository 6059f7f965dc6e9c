package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/vk/matrixci/internal/action"
	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/ctxlog"
	"github.com/vk/matrixci/internal/matrix"
)

// envPrefix is prepended to axis names when exporting a combination into a
// step action's environment.
const envPrefix = "MATRIX_"

// Runner executes the step pipeline for one combination at a time. The
// step list and invoker are read-only, so a single Runner is safely shared
// by all of the scheduler's workers.
type Runner struct {
	steps   []*config.Step
	invoker action.Invoker
}

// NewRunner builds a Runner over the workflow's ordered steps.
func NewRunner(steps []*config.Step, invoker action.Invoker) *Runner {
	return &Runner{steps: steps, invoker: invoker}
}

// Run drives one combination through the pipeline and returns its
// finalized result: Pending → Running → Passed, Failed or Cancelled.
//
// Steps execute strictly in order. A false guard records a skip and moves
// on; a guard evaluation error, a non-zero exit, or an action that cannot
// be started all fail the combination at that step, and the remaining
// steps are never attempted. Cancellation of ctx, observed between steps
// or by the in-flight action being killed, supersedes any partial
// outcome and yields a Cancelled result.
func (r *Runner) Run(ctx context.Context, c matrix.Combination) *Result {
	logger := ctxlog.FromContext(ctx).With("combination", c.Key())
	res := &Result{
		Combination: c,
		Status:      Running,
		FailedStep:  -1,
	}
	env := c.Environ(envPrefix)
	started := time.Now()

	for i, step := range r.steps {
		if ctx.Err() != nil {
			logger.Warn("Run cancelled, discarding remaining steps.", "next_step", step.Name)
			return CancelledResult(c)
		}

		stepLogger := logger.With("step", step.Name, "index", i)

		ok, guardErr := EvalGuard(step.If, c)
		if guardErr != nil {
			stepLogger.Error("Guard evaluation failed.", "error", guardErr)
			res.Steps = append(res.Steps, StepOutcome{
				Name:   step.Name,
				Status: StepFailed,
				Err:    guardErr,
			})
			return r.fail(res, i, step.Name, started)
		}
		if !ok {
			stepLogger.Info("⏭️ Step skipped by guard.")
			res.Steps = append(res.Steps, StepOutcome{
				Name:   step.Name,
				Status: StepSkipped,
			})
			continue
		}

		stepCtx := ctx
		var cancelStep context.CancelFunc
		if step.Timeout > 0 {
			stepCtx, cancelStep = context.WithTimeout(ctx, step.Timeout)
		}

		stepLogger.Info("▶️ Starting step")
		stepStarted := time.Now()
		output, err := r.invoker.Invoke(stepCtx, step.Run, env)
		elapsed := time.Since(stepStarted)
		if cancelStep != nil {
			cancelStep()
		}

		if err != nil {
			// The whole run being aborted is not this step's fault.
			if ctx.Err() != nil {
				stepLogger.Warn("Step aborted by run cancellation.")
				return CancelledResult(c)
			}

			var startErr *action.StartError
			invocation := errors.As(err, &startErr)
			if invocation {
				stepLogger.Error("❌ Step action could not be invoked.", "error", err)
			} else {
				stepLogger.Error("❌ Step failed.", "error", err, "duration", elapsed)
			}
			res.Steps = append(res.Steps, StepOutcome{
				Name:            step.Name,
				Status:          StepFailed,
				Output:          output,
				Err:             err,
				InvocationError: invocation,
				Duration:        elapsed,
			})
			return r.fail(res, i, step.Name, started)
		}

		stepLogger.Info("✅ Step passed.", "duration", elapsed)
		res.Steps = append(res.Steps, StepOutcome{
			Name:     step.Name,
			Status:   StepPassed,
			Output:   output,
			Duration: elapsed,
		})
	}

	res.Status = Passed
	res.Duration = time.Since(started)
	logger.Info("✅ Combination passed.", "duration", res.Duration)
	return res
}

// fail finalizes a result at the given failing step. Steps after it do
// not run: a coverage upload must not happen after a failed build.
func (r *Runner) fail(res *Result, index int, name string, started time.Time) *Result {
	res.Status = Failed
	res.FailedStep = index
	res.FailedStepName = name
	res.Duration = time.Since(started)
	return res
}
