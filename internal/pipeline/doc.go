// Package pipeline executes the ordered step pipeline for a single matrix
// combination. Each job runner owns its combination and its result
// exclusively: steps run strictly in order, a false guard records a skip
// and moves on, the first failing step terminates that combination's run,
// and nothing here is shared with sibling combinations.
package pipeline
