package pipeline

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/matrix"
)

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "expression fixture must parse: %s", diags.Error())
	return expr
}

func comboFixture() matrix.Combination {
	return matrix.NewCombination([]string{"os", "python"}, map[string]cty.Value{
		"os":     cty.StringVal("ubuntu-22.04"),
		"python": cty.StringVal("pypy3"),
	})
}

func TestEvalGuard(t *testing.T) {
	t.Run("nil guard always passes", func(t *testing.T) {
		ok, err := EvalGuard(nil, comboFixture())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("inequality against an axis value", func(t *testing.T) {
		guard := parseExpr(t, `matrix.python != "pypy3"`)

		ok, err := EvalGuard(guard, comboFixture())
		require.NoError(t, err)
		assert.False(t, ok, "pypy3 combination must be guarded off")

		other := matrix.NewCombination([]string{"python"}, map[string]cty.Value{
			"python": cty.StringVal("3.12"),
		})
		ok, err = EvalGuard(guard, other)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("compound guards work", func(t *testing.T) {
		guard := parseExpr(t, `matrix.os == "ubuntu-22.04" && matrix.python == "pypy3"`)
		ok, err := EvalGuard(guard, comboFixture())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("non-boolean guard is an error", func(t *testing.T) {
		guard := parseExpr(t, `matrix.os`)
		_, err := EvalGuard(guard, comboFixture())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boolean")
	})
}
