package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Axis is one named dimension of the build matrix with its ordered values.
// Value order is significant: it fixes the enumeration order of the
// expanded matrix.
type Axis struct {
	Name   string
	Values []cty.Value
}

// ExcludeRule is a partial assignment of axis values. A combination is
// suppressed when every pair in Match equals the combination's value for
// that axis; axes not mentioned here are wildcards.
type ExcludeRule struct {
	Match map[string]cty.Value
}

// Step is the format-agnostic representation of one pipeline step.
type Step struct {
	// Name labels the step in logs and reports.
	Name string

	// Run is the opaque shell action invoked for the step.
	Run string

	// If is the optional guard expression, evaluated per combination
	// against a `matrix` object variable. Nil means the step always runs.
	If hcl.Expression

	// Timeout bounds the step's action. Zero means no step-level timeout.
	Timeout time.Duration
}

// Workflow is the complete loaded document: matrix axes in declaration
// order, exclusion rules, and the ordered step pipeline. It is read-only
// after loading and safely shared by reference across all job runners.
type Workflow struct {
	Axes     []*Axis
	Excludes []*ExcludeRule
	Steps    []*Step

	// Workers is the document-level concurrency limit. Zero means the
	// document does not specify one.
	Workers int
}

// Axis returns the axis with the given name, or nil.
func (w *Workflow) Axis(name string) *Axis {
	for _, a := range w.Axes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AxisNames returns the axis names in declaration order.
func (w *Workflow) AxisNames() []string {
	names := make([]string, len(w.Axes))
	for i, a := range w.Axes {
		names[i] = a.Name
	}
	return names
}
