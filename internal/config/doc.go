// Package config defines the unified, format-agnostic representation of a
// workflow document: the build matrix axes, the exclusion rules, and the
// ordered step pipeline. Format-specific loaders (internal/hcl,
// internal/yaml) translate their source syntax into this model; everything
// downstream of loading depends only on this package.
//
// Guard expressions are deliberately kept as unevaluated hcl.Expression
// values. A guard is evaluated once per combination, against that
// combination's axis values, so loading cannot resolve it, only validate
// that it references known axes.
package config
