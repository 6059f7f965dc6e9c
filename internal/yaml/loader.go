package yaml

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/matrixci/internal/config"
	"github.com/vk/matrixci/internal/ctxlog"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a YAML workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing YAML workflow.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", config.ErrInvalidConfig, path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must contain a single mapping document", config.ErrInvalidConfig, path)
	}

	wf := &config.Workflow{}
	root := doc.Content[0]
	for i := 0; i < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "workers":
			if err := value.Decode(&wf.Workers); err != nil {
				return nil, fmt.Errorf("%w: workers: %v", config.ErrInvalidConfig, err)
			}
		case "matrix":
			if err := l.translateMatrix(value, wf); err != nil {
				return nil, err
			}
		case "steps":
			if err := l.translateSteps(path, value, wf); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unknown top-level key %q at line %d", config.ErrInvalidConfig, key.Value, key.Line)
		}
	}

	logger.Debug("YAML workflow translated into unified model.",
		"axes", len(wf.Axes), "excludes", len(wf.Excludes), "steps", len(wf.Steps))
	return wf, nil
}

// translateMatrix walks the `matrix` mapping in document order. Every key
// is an axis except `exclude`, which holds the exclusion rule list.
func (l *Loader) translateMatrix(node *yaml.Node, wf *config.Workflow) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: matrix must be a mapping, line %d", config.ErrInvalidConfig, node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "exclude" {
			if err := l.translateExcludes(value, wf); err != nil {
				return err
			}
			continue
		}
		if value.Kind != yaml.SequenceNode {
			return fmt.Errorf("%w: axis %q must be a list, line %d", config.ErrInvalidConfig, key.Value, value.Line)
		}
		axis := &config.Axis{Name: key.Value}
		for _, item := range value.Content {
			v, err := scalarValue(item)
			if err != nil {
				return fmt.Errorf("%w: axis %q: %v", config.ErrInvalidConfig, key.Value, err)
			}
			axis.Values = append(axis.Values, v)
		}
		wf.Axes = append(wf.Axes, axis)
	}
	return nil
}

// translateExcludes reads `matrix.exclude`, a list of partial axis/value
// mappings.
func (l *Loader) translateExcludes(node *yaml.Node, wf *config.Workflow) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: matrix.exclude must be a list, line %d", config.ErrInvalidConfig, node.Line)
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: exclude entries must be mappings, line %d", config.ErrInvalidConfig, item.Line)
		}
		rule := &config.ExcludeRule{Match: make(map[string]cty.Value)}
		for i := 0; i < len(item.Content); i += 2 {
			key, value := item.Content[i], item.Content[i+1]
			v, err := scalarValue(value)
			if err != nil {
				return fmt.Errorf("%w: exclude entry for axis %q: %v", config.ErrInvalidConfig, key.Value, err)
			}
			rule.Match[key.Value] = v
		}
		wf.Excludes = append(wf.Excludes, rule)
	}
	return nil
}

// stepNode is the YAML shape of one pipeline step.
type stepNode struct {
	Name    string `yaml:"name"`
	Run     string `yaml:"run"`
	If      string `yaml:"if"`
	Timeout string `yaml:"timeout"`
}

// translateSteps reads the ordered `steps` list. Guard strings are parsed
// as HCL expressions so they evaluate exactly like guards from HCL
// documents.
func (l *Loader) translateSteps(path string, node *yaml.Node, wf *config.Workflow) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: steps must be a list, line %d", config.ErrInvalidConfig, node.Line)
	}
	for _, item := range node.Content {
		var raw stepNode
		if err := item.Decode(&raw); err != nil {
			return fmt.Errorf("%w: step at line %d: %v", config.ErrInvalidConfig, item.Line, err)
		}

		step := &config.Step{Name: raw.Name, Run: raw.Run}
		if raw.If != "" {
			expr, diags := hclsyntax.ParseExpression([]byte(raw.If), fmt.Sprintf("%s:%d", path, item.Line), hcl.InitialPos)
			if diags.HasErrors() {
				return fmt.Errorf("%w: step %q guard: %s", config.ErrInvalidConfig, raw.Name, diags.Error())
			}
			step.If = expr
		}
		if raw.Timeout != "" {
			d, err := time.ParseDuration(raw.Timeout)
			if err != nil {
				return fmt.Errorf("%w: step %q has invalid timeout %q: %v", config.ErrInvalidConfig, raw.Name, raw.Timeout, err)
			}
			step.Timeout = d
		}
		wf.Steps = append(wf.Steps, step)
	}
	return nil
}

// scalarValue converts a YAML scalar node into a cty scalar using the
// node's resolved tag.
func scalarValue(node *yaml.Node) (cty.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return cty.NilVal, fmt.Errorf("value at line %d must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!str":
		return cty.StringVal(node.Value), nil
	case "!!int":
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid integer %q at line %d", node.Value, node.Line)
		}
		return cty.NumberIntVal(n), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid float %q at line %d", node.Value, node.Line)
		}
		return cty.NumberFloatVal(f), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid bool %q at line %d", node.Value, node.Line)
		}
		return cty.BoolVal(b), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported scalar type %s at line %d", node.Tag, node.Line)
	}
}

var _ config.Loader = (*Loader)(nil)
