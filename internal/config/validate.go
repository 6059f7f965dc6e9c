package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/matrixci/internal/ctxlog"
)

// ErrInvalidConfig is the root of all pre-run configuration errors. Any
// validation failure wraps it, so callers can distinguish a bad document
// from a runtime failure with errors.Is.
var ErrInvalidConfig = errors.New("invalid workflow configuration")

// Validate performs the full semantic check of a loaded workflow. It
// collects every violation instead of stopping at the first one, so the
// user can fix the document in a single pass.
//
// Checks:
//   - at least one step; every step has a name and a non-empty action
//   - axis names unique, every axis has at least one value, values unique
//   - exclusion rules only name known axes
//   - guard expressions only reference matrix.<known-axis>
//   - workers and step timeouts non-negative
func Validate(ctx context.Context, w *Workflow) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	if len(w.Steps) == 0 {
		errs = append(errs, "workflow has no steps")
	}

	seenAxes := make(map[string]bool, len(w.Axes))
	for _, axis := range w.Axes {
		if axis.Name == "" {
			errs = append(errs, "axis with empty name")
			continue
		}
		if seenAxes[axis.Name] {
			errs = append(errs, fmt.Sprintf("duplicate axis %q", axis.Name))
		}
		seenAxes[axis.Name] = true

		if len(axis.Values) == 0 {
			errs = append(errs, fmt.Sprintf("axis %q has no values", axis.Name))
		}
		for i, v := range axis.Values {
			for _, prev := range axis.Values[:i] {
				if v.RawEquals(prev) {
					errs = append(errs, fmt.Sprintf("axis %q has duplicate value %s", axis.Name, v.GoString()))
				}
			}
		}
	}

	for i, rule := range w.Excludes {
		if len(rule.Match) == 0 {
			errs = append(errs, fmt.Sprintf("exclude rule %d is empty and would match every combination", i))
		}
		for name := range rule.Match {
			if !seenAxes[name] {
				errs = append(errs, fmt.Sprintf("exclude rule %d references unknown axis %q", i, name))
			}
		}
	}

	for i, step := range w.Steps {
		if step.Name == "" {
			errs = append(errs, fmt.Sprintf("step %d has no name", i))
		}
		if strings.TrimSpace(step.Run) == "" {
			errs = append(errs, fmt.Sprintf("step %d (%s) has an empty action", i, step.Name))
		}
		if step.Timeout < 0 {
			errs = append(errs, fmt.Sprintf("step %d (%s) has a negative timeout", i, step.Name))
		}
		errs = append(errs, validateGuard(step, seenAxes)...)
	}

	if w.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers must not be negative, got %d", w.Workers))
	}

	if len(errs) > 0 {
		logger.Debug("Workflow validation failed.", "violations", len(errs))
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}
	logger.Debug("Workflow validation passed.", "axes", len(w.Axes), "excludes", len(w.Excludes), "steps", len(w.Steps))
	return nil
}

// validateGuard checks that a step's guard only reaches into the matrix
// object, and only at axes that exist. Anything else would silently
// evaluate to an error on every combination at run time, which is a config
// mistake, not a step failure.
func validateGuard(step *Step, axes map[string]bool) []string {
	if step.If == nil {
		return nil
	}

	var errs []string
	for _, traversal := range step.If.Variables() {
		root := traversal.RootName()
		if root != "matrix" {
			errs = append(errs, fmt.Sprintf("step %q guard references unknown variable %q, only \"matrix\" is available", step.Name, root))
			continue
		}
		if len(traversal) < 2 {
			errs = append(errs, fmt.Sprintf("step %q guard must reference a matrix axis, e.g. matrix.os", step.Name))
			continue
		}
		attr, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			errs = append(errs, fmt.Sprintf("step %q guard must use attribute access on matrix, e.g. matrix.os", step.Name))
			continue
		}
		if !axes[attr.Name] {
			errs = append(errs, fmt.Sprintf("step %q guard references unknown axis %q", step.Name, attr.Name))
		}
	}
	return errs
}
