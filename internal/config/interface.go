package config

import "context"

// Loader is the interface for a format-specific workflow loader. It reads
// a workflow document from a path and translates it into the
// format-agnostic model. Loaders report syntax and translation problems;
// semantic checks live in Validate.
type Loader interface {
	Load(ctx context.Context, path string) (*Workflow, error)
}
