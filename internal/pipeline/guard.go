package pipeline

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/matrixci/internal/matrix"
)

// EvalGuard evaluates a step's guard expression against one combination.
// The combination's axis values are exposed as the `matrix` object, so a
// guard reads like `matrix.python != "pypy3"`. A nil guard always passes.
//
// Validation has already pinned the guard's variable references to known
// axes, so an error here is a type problem inside the expression itself
// (e.g. comparing a string axis with a number); the caller treats it as a
// failure of the guarded step.
func EvalGuard(expr hcl.Expression, c matrix.Combination) (bool, error) {
	if expr == nil {
		return true, nil
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"matrix": c.Object(),
		},
	}

	v, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return false, fmt.Errorf("guard evaluation failed: %s", diags.Error())
	}

	v, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("guard must evaluate to a boolean: %w", err)
	}
	if v.IsNull() || !v.IsKnown() {
		return false, fmt.Errorf("guard evaluated to an unknown or null value")
	}
	return v.True(), nil
}
