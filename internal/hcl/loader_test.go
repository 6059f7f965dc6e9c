package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/config"
)

func writeWorkflow(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ci.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("full workflow", func(t *testing.T) {
		path := writeWorkflow(t, `
workers = 2

axis "os" {
  values = ["ubuntu-22.04", "windows-2022"]
}

axis "python" {
  values = ["3.11", "3.12", "pypy3"]
}

exclude {
  os     = "windows-2022"
  python = "pypy3"
}

step "checkout" {
  run = "git clone ."
}

step "typecheck" {
  run = "mypy ."
  if  = matrix.python != "pypy3"
}

step "test" {
  run     = "pytest"
  timeout = "30m"
}
`)

		wf, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, 2, wf.Workers)

		// Axis declaration order is the expansion order.
		require.Len(t, wf.Axes, 2)
		assert.Equal(t, "os", wf.Axes[0].Name)
		assert.Equal(t, "python", wf.Axes[1].Name)
		assert.Equal(t, []cty.Value{cty.StringVal("ubuntu-22.04"), cty.StringVal("windows-2022")}, wf.Axes[0].Values)

		require.Len(t, wf.Excludes, 1)
		assert.True(t, wf.Excludes[0].Match["os"].RawEquals(cty.StringVal("windows-2022")))
		assert.True(t, wf.Excludes[0].Match["python"].RawEquals(cty.StringVal("pypy3")))

		require.Len(t, wf.Steps, 3)
		assert.Equal(t, "checkout", wf.Steps[0].Name)
		assert.Nil(t, wf.Steps[0].If)
		assert.NotNil(t, wf.Steps[1].If, "guard expression must be kept unevaluated")
		assert.Equal(t, 30*time.Minute, wf.Steps[2].Timeout)
	})

	t.Run("numeric axis values keep their type", func(t *testing.T) {
		path := writeWorkflow(t, `
axis "ver" {
  values = [1, 2]
}

step "build" {
  run = "make"
}
`)
		wf, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, wf.Axes, 1)
		assert.True(t, wf.Axes[0].Values[0].RawEquals(cty.NumberIntVal(1)))
	})

	t.Run("syntax error is an invalid config", func(t *testing.T) {
		path := writeWorkflow(t, `axis "os" {`)
		_, err := NewLoader().Load(ctx, path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("non-list axis values are rejected", func(t *testing.T) {
		path := writeWorkflow(t, `
axis "os" {
  values = "ubuntu-22.04"
}

step "build" {
  run = "make"
}
`)
		_, err := NewLoader().Load(ctx, path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "must be a list")
	})

	t.Run("non-scalar axis values are rejected", func(t *testing.T) {
		path := writeWorkflow(t, `
axis "os" {
  values = [["nested"]]
}

step "build" {
  run = "make"
}
`)
		_, err := NewLoader().Load(ctx, path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "scalars")
	})

	t.Run("invalid timeout is rejected", func(t *testing.T) {
		path := writeWorkflow(t, `
step "test" {
  run     = "pytest"
  timeout = "soon"
}
`)
		_, err := NewLoader().Load(ctx, path)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("missing file is an invalid config", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "absent.hcl"))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}
