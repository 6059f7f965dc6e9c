// Package hcl loads workflow documents written in HCL and translates them
// into the format-agnostic config model. Axis values and exclusion rules
// are evaluated at load time (they are literals); step guards stay as
// unevaluated expressions for per-combination evaluation.
package hcl
