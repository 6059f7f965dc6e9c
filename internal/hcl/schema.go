package hcl

import "github.com/hashicorp/hcl/v2"

// axisBlock represents an `axis "<name>" { values = [...] }` block.
type axisBlock struct {
	Name   string         `hcl:"name,label"`
	Values hcl.Expression `hcl:"values"`
}

// excludeBlock represents an `exclude { axis = value, ... }` block. The
// body is free-form: each attribute names an axis and gives the value to
// match.
type excludeBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// stepBlock represents a `step "<name>" { run = ... }` block.
type stepBlock struct {
	Name    string         `hcl:"name,label"`
	Run     string         `hcl:"run"`
	If      hcl.Expression `hcl:"if,optional"`
	Timeout string         `hcl:"timeout,optional"`
}

// workflowFile is the top-level structure of a workflow document.
type workflowFile struct {
	Workers  int             `hcl:"workers,optional"`
	Axes     []*axisBlock    `hcl:"axis,block"`
	Excludes []*excludeBlock `hcl:"exclude,block"`
	Steps    []*stepBlock    `hcl:"step,block"`
}
