package matrix

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Combination is one complete assignment of a value to every axis. It is
// created during expansion and immutable afterwards: one job runner
// consumes it, produces a result, and discards it. The unexported fields
// plus copying accessors enforce the immutability.
type Combination struct {
	axes   []string
	values map[string]cty.Value
}

// NewCombination builds a combination from axis names in declaration order
// and their selected values. Both inputs are copied.
func NewCombination(axes []string, values map[string]cty.Value) Combination {
	axesCopy := make([]string, len(axes))
	copy(axesCopy, axes)
	valuesCopy := make(map[string]cty.Value, len(values))
	for k, v := range values {
		valuesCopy[k] = v
	}
	return Combination{axes: axesCopy, values: valuesCopy}
}

// Axes returns the axis names in declaration order.
func (c Combination) Axes() []string {
	out := make([]string, len(c.axes))
	copy(out, c.axes)
	return out
}

// Value returns the selected value for the named axis.
func (c Combination) Value(name string) (cty.Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Key renders the combination as a stable "axis=value" list in declaration
// order. It identifies the combination in logs and reports.
func (c Combination) Key() string {
	parts := make([]string, len(c.axes))
	for i, name := range c.axes {
		parts[i] = name + "=" + ValueString(c.values[name])
	}
	return strings.Join(parts, ",")
}

// Object packages the combination's values as a cty object, ready to be
// bound to the `matrix` variable of a guard's evaluation context.
func (c Combination) Object() cty.Value {
	if len(c.values) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(c.values))
	for k, v := range c.values {
		vals[k] = v
	}
	return cty.ObjectVal(vals)
}

// Environ renders the combination as environment variable assignments for
// a step's action, one per axis: the axis name is upper-cased, runs of
// non-alphanumeric characters become underscores, and the given prefix is
// prepended. `python-version` with prefix "MATRIX_" becomes
// MATRIX_PYTHON_VERSION.
func (c Combination) Environ(prefix string) []string {
	env := make([]string, 0, len(c.axes))
	for _, name := range c.axes {
		env = append(env, prefix+envName(name)+"="+ValueString(c.values[name]))
	}
	return env
}

// ValueString renders a scalar axis value as a plain string. Strings come
// back unquoted; numbers and bools use their cty string conversion.
func ValueString(v cty.Value) string {
	s, err := convert.Convert(v, cty.String)
	if err != nil || s.IsNull() {
		return v.GoString()
	}
	return s.AsString()
}

func envName(axis string) string {
	var b strings.Builder
	for _, r := range axis {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// String implements fmt.Stringer for debug output.
func (c Combination) String() string {
	return fmt.Sprintf("Combination(%s)", c.Key())
}
