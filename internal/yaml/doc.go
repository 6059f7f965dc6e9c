// Package yaml loads workflow documents written in the familiar CI YAML
// shape (a `matrix` mapping with an `exclude` list, plus a `steps` list)
// and translates them into the same format-agnostic config model the HCL
// loader produces.
//
// Decoding goes through yaml.Node rather than plain maps: Go maps would
// destroy the axis declaration order, and the expander's deterministic
// enumeration depends on it. Guard strings are parsed with the HCL
// expression syntax, so both loaders feed identical guard machinery.
package yaml
