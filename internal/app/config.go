package app

import "errors"

// Config holds all the configuration an App instance needs to run.
type Config struct {
	// WorkflowPath points at the workflow document (.hcl, .yml or .yaml).
	WorkflowPath string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers overrides the document's concurrency limit when positive.
	Workers int

	// List makes the run print the expanded, filtered combinations and
	// exit without executing anything.
	List bool

	// Verbose includes per-step outcomes in the rendered report.
	Verbose bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
