package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/action"
	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/matrix"
)

// invokerFunc adapts a function to the action.Invoker interface for tests.
type invokerFunc func(ctx context.Context, run string, env []string) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, run string, env []string) (string, error) {
	return f(ctx, run, env)
}

func stepsFixture(names ...string) []*config.Step {
	steps := make([]*config.Step, len(names))
	for i, name := range names {
		steps[i] = &config.Step{Name: name, Run: name}
	}
	return steps
}

func TestRunnerRun(t *testing.T) {
	ctx := context.Background()
	combo := matrix.NewCombination([]string{"os", "ver"}, map[string]cty.Value{
		"os":  cty.StringVal("B"),
		"ver": cty.NumberIntVal(1),
	})

	t.Run("all steps pass", func(t *testing.T) {
		var invoked []string
		runner := NewRunner(stepsFixture("checkout", "build", "test"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				invoked = append(invoked, run)
				return "ok\n", nil
			}))

		res := runner.Run(ctx, combo)

		assert.Equal(t, Passed, res.Status)
		assert.Equal(t, -1, res.FailedStep)
		assert.Equal(t, []string{"checkout", "build", "test"}, invoked)
		require.Len(t, res.Steps, 3)
		for _, step := range res.Steps {
			assert.Equal(t, StepPassed, step.Status)
			assert.Equal(t, "ok\n", step.Output)
		}
	})

	t.Run("failure stops the pipeline and records the step", func(t *testing.T) {
		var invoked []string
		runner := NewRunner(stepsFixture("checkout", "install", "build", "test"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				invoked = append(invoked, run)
				if run == "install" {
					return "boom\n", errors.New("exit status 1")
				}
				return "", nil
			}))

		res := runner.Run(ctx, combo)

		assert.Equal(t, Failed, res.Status)
		assert.Equal(t, 1, res.FailedStep)
		assert.Equal(t, "install", res.FailedStepName)
		// Steps after the failure never ran and have no outcome at all.
		assert.Equal(t, []string{"checkout", "install"}, invoked)
		require.Len(t, res.Steps, 2)
		assert.Equal(t, StepFailed, res.Steps[1].Status)
		assert.Equal(t, "boom\n", res.Steps[1].Output)
		assert.False(t, res.Steps[1].InvocationError)
	})

	t.Run("false guard records a skip and continues", func(t *testing.T) {
		steps := stepsFixture("checkout", "typecheck", "test")
		steps[1].If = parseExpr(t, `matrix.ver != 1`)

		var invoked []string
		runner := NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				invoked = append(invoked, run)
				return "", nil
			}))

		res := runner.Run(ctx, combo)

		assert.Equal(t, Passed, res.Status)
		assert.Equal(t, []string{"checkout", "test"}, invoked)
		require.Len(t, res.Steps, 3)
		assert.Equal(t, StepPassed, res.Steps[0].Status)
		assert.Equal(t, StepSkipped, res.Steps[1].Status)
		assert.Equal(t, StepPassed, res.Steps[2].Status)
	})

	t.Run("invocation error is distinguished from step failure", func(t *testing.T) {
		runner := NewRunner(stepsFixture("build"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				return "", &action.StartError{Err: errors.New("no such file or directory")}
			}))

		res := runner.Run(ctx, combo)

		assert.Equal(t, Failed, res.Status)
		require.Len(t, res.Steps, 1)
		assert.True(t, res.Steps[0].InvocationError)
	})

	t.Run("guard evaluation error fails the guarded step", func(t *testing.T) {
		steps := stepsFixture("build")
		steps[0].If = parseExpr(t, `matrix.os`) // not a boolean

		runner := NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				t.Fatal("action must not run when the guard cannot be evaluated")
				return "", nil
			}))

		res := runner.Run(ctx, combo)

		assert.Equal(t, Failed, res.Status)
		assert.Equal(t, 0, res.FailedStep)
		require.Len(t, res.Steps, 1)
		assert.Equal(t, StepFailed, res.Steps[0].Status)
	})

	t.Run("cancelled context yields a cancelled result", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		runner := NewRunner(stepsFixture("build"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				t.Fatal("action must not run after cancellation")
				return "", nil
			}))

		res := runner.Run(cancelled, combo)

		assert.Equal(t, Cancelled, res.Status)
		assert.Empty(t, res.Steps)
		assert.Equal(t, -1, res.FailedStep)
	})

	t.Run("cancellation during a step supersedes its failure", func(t *testing.T) {
		runCtx, cancel := context.WithCancel(ctx)
		runner := NewRunner(stepsFixture("build", "test"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				cancel()
				return "", ctx.Err()
			}))

		res := runner.Run(runCtx, combo)

		assert.Equal(t, Cancelled, res.Status)
	})

	t.Run("combination is exported into the action environment", func(t *testing.T) {
		var gotEnv []string
		runner := NewRunner(stepsFixture("build"), invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				gotEnv = env
				return "", nil
			}))

		runner.Run(ctx, combo)

		assert.Contains(t, gotEnv, "MATRIX_OS=B")
		assert.Contains(t, gotEnv, "MATRIX_VER=1")
	})
}
