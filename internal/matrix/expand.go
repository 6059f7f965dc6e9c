package matrix

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/config"
)

// Expand computes the full Cartesian product of the given axes. For axes
// of sizes k1..kN it returns exactly k1*...*kN combinations, enumerated
// lexicographically: the first declared axis varies slowest, the last
// varies fastest, values in declared order. An empty axis set expands to a
// single empty combination; the pipeline still runs once, there is just
// nothing to vary.
//
// An axis with zero values cannot be expanded and is an invalid-config
// error; Validate reports it before Expand ever sees it, this is a
// backstop for programmatic callers.
func Expand(axes []*config.Axis) ([]Combination, error) {
	names := make([]string, len(axes))
	total := 1
	for i, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %q has no values", config.ErrInvalidConfig, axis.Name)
		}
		names[i] = axis.Name
		total *= len(axis.Values)
	}

	combos := make([]Combination, 0, total)
	indices := make([]int, len(axes))
	for {
		values := make(map[string]cty.Value, len(axes))
		for i, axis := range axes {
			values[axis.Name] = axis.Values[indices[i]]
		}
		combos = append(combos, NewCombination(names, values))

		// Advance the odometer, last axis fastest.
		pos := len(axes) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(axes[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return combos, nil
}
