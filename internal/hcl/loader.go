package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates an HCL workflow loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing HCL workflow.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %s", config.ErrInvalidConfig, path, diags.Error())
	}

	var raw workflowFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %s", config.ErrInvalidConfig, path, diags.Error())
	}

	wf := &config.Workflow{Workers: raw.Workers}

	for _, block := range raw.Axes {
		values, err := evalAxisValues(block)
		if err != nil {
			return nil, err
		}
		wf.Axes = append(wf.Axes, &config.Axis{Name: block.Name, Values: values})
	}

	for i, block := range raw.Excludes {
		rule, err := evalExcludeRule(i, block)
		if err != nil {
			return nil, err
		}
		wf.Excludes = append(wf.Excludes, rule)
	}

	for _, block := range raw.Steps {
		step := &config.Step{
			Name: block.Name,
			Run:  block.Run,
			If:   block.If,
		}
		if block.Timeout != "" {
			d, err := time.ParseDuration(block.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%w: step %q has invalid timeout %q: %v", config.ErrInvalidConfig, block.Name, block.Timeout, err)
			}
			step.Timeout = d
		}
		wf.Steps = append(wf.Steps, step)
	}

	logger.Debug("HCL workflow translated into unified model.",
		"axes", len(wf.Axes), "excludes", len(wf.Excludes), "steps", len(wf.Steps))
	return wf, nil
}

// evalAxisValues evaluates an axis block's `values` list. Axis values are
// literal scalars; no variables are in scope at load time.
func evalAxisValues(block *axisBlock) ([]cty.Value, error) {
	val, diags := block.Values.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: axis %q values: %s", config.ErrInvalidConfig, block.Name, diags.Error())
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("%w: axis %q values must be a list", config.ErrInvalidConfig, block.Name)
	}

	var values []cty.Value
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		if v.IsNull() || !v.Type().IsPrimitiveType() {
			return nil, fmt.Errorf("%w: axis %q values must be scalars (string, number or bool)", config.ErrInvalidConfig, block.Name)
		}
		values = append(values, v)
	}
	return values, nil
}

// evalExcludeRule evaluates the free-form attributes of an exclude block
// into a partial axis/value match.
func evalExcludeRule(index int, block *excludeBlock) (*config.ExcludeRule, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: exclude rule %d: %s", config.ErrInvalidConfig, index, diags.Error())
	}

	rule := &config.ExcludeRule{Match: make(map[string]cty.Value, len(attrs))}
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: exclude rule %d, axis %q: %s", config.ErrInvalidConfig, index, name, diags.Error())
		}
		rule.Match[name] = v
	}
	return rule, nil
}

var _ config.Loader = (*Loader)(nil)
