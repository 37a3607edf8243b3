package gen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// Override pins the conversion of one node. Empty parts keep what the
// descriptor says.
type Override struct {
	SemanticClass string                     `yaml:"semantic_class,omitempty"`
	Contract      contract.ExecutionContract `yaml:"contract,omitempty"`
	Notes         []string                   `yaml:"notes,omitempty"`
}

// Overrides is the versioned override file. Node keys are matched after
// NormalizeKey, so "HTTP-Request" and "httprequest" name the same node.
type Overrides struct {
	Version int                 `yaml:"version"`
	Nodes   map[string]Override `yaml:"nodes"`
}

// ParseOverrides decodes an override file
func ParseOverrides(data []byte) (*Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	if o.Version < 1 {
		return nil, fmt.Errorf("overrides must declare a version >= 1, got %d", o.Version)
	}
	nodes := make(map[string]Override, len(o.Nodes))
	for k, v := range o.Nodes {
		nodes[NormalizeKey(k)] = v
	}
	o.Nodes = nodes
	return &o, nil
}

// LoadOverrides reads and decodes an override file
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// Lookup returns the override for a node name
func (o *Overrides) Lookup(nodeName string) (Override, bool) {
	if o == nil {
		return Override{}, false
	}
	ov, ok := o.Nodes[NormalizeKey(nodeName)]
	return ov, ok
}

// Apply returns the class and context to route with. The input context is
// not modified.
func (o *Overrides) Apply(class SemanticClass, node contract.Context) (SemanticClass, contract.Context, bool) {
	ov, ok := o.Lookup(node.NodeName)
	if !ok {
		return class, node, false
	}
	if ov.SemanticClass != "" {
		class = ParseSemanticClass(ov.SemanticClass)
	}
	node.Contract = node.Contract.Merge(ov.Contract)
	return class, node, true
}

// RouteWithOverrides applies the override for the node, if any, then routes.
// Applied overrides are recorded in the conversion notes.
func RouteWithOverrides(o *Overrides, class SemanticClass, node contract.Context) *Result {
	class, node, applied := o.Apply(class, node)
	res := Route(class, node)
	if applied {
		ov, _ := o.Lookup(node.NodeName)
		res.ConversionNotes = append(res.ConversionNotes, fmt.Sprintf("override v%d applied", o.Version))
		res.ConversionNotes = append(res.ConversionNotes, ov.Notes...)
	}
	return res
}
