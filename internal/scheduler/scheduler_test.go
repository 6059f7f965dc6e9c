package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/matrix"
	"github.com/vk/matrixci/internal/pipeline"
)

// invokerFunc adapts a function to the action.Invoker interface for tests.
type invokerFunc func(ctx context.Context, run string, env []string) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, run string, env []string) (string, error) {
	return f(ctx, run, env)
}

func combosFixture(t *testing.T) []matrix.Combination {
	t.Helper()
	combos, err := matrix.Expand([]*config.Axis{
		{Name: "os", Values: []cty.Value{cty.StringVal("A"), cty.StringVal("B")}},
		{Name: "ver", Values: []cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}},
	})
	require.NoError(t, err)
	return combos
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	steps := []*config.Step{{Name: "build", Run: "build"}}

	t.Run("results come back in expansion order", func(t *testing.T) {
		runner := pipeline.NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				return "", nil
			}))

		combos := combosFixture(t)
		results := New(runner, 2).RunAll(ctx, combos)

		require.Len(t, results, len(combos))
		for i, res := range results {
			assert.Equal(t, combos[i].Key(), res.Combination.Key())
			assert.Equal(t, pipeline.Passed, res.Status)
		}
	})

	t.Run("one failing combination does not stop the others", func(t *testing.T) {
		runner := pipeline.NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				for _, kv := range env {
					if kv == "MATRIX_OS=B" {
						return "", errors.New("exit status 1")
					}
				}
				return "", nil
			}))

		results := New(runner, 2).RunAll(ctx, combosFixture(t))

		require.Len(t, results, 4)
		assert.Equal(t, pipeline.Passed, results[0].Status) // os=A,ver=1
		assert.Equal(t, pipeline.Passed, results[1].Status) // os=A,ver=2
		assert.Equal(t, pipeline.Failed, results[2].Status) // os=B,ver=1
		assert.Equal(t, pipeline.Failed, results[3].Status) // os=B,ver=2
	})

	t.Run("more workers than combinations is fine", func(t *testing.T) {
		runner := pipeline.NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				return "", nil
			}))

		results := New(runner, 32).RunAll(ctx, combosFixture(t))
		require.Len(t, results, 4)
	})

	t.Run("cancelled context finalizes unstarted combinations as cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		runner := pipeline.NewRunner(steps, invokerFunc(
			func(ctx context.Context, run string, env []string) (string, error) {
				t.Error("no action must run after cancellation")
				return "", nil
			}))

		results := New(runner, 2).RunAll(cancelled, combosFixture(t))

		require.Len(t, results, 4)
		for _, res := range results {
			assert.Equal(t, pipeline.Cancelled, res.Status)
			assert.Empty(t, res.Steps)
		}
	})
}

func TestNewDefaultsWorkers(t *testing.T) {
	s := New(nil, 0)
	assert.Equal(t, DefaultWorkers, s.workers)

	s = New(nil, -3)
	assert.Equal(t, DefaultWorkers, s.workers)

	s = New(nil, 7)
	assert.Equal(t, 7, s.workers)
}
