package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/descriptor.schema.json
var descriptorSchema []byte

// Descriptor is a node description as stored on disk or posted to the API
type Descriptor struct {
	NodeName          string            `json:"node_name" yaml:"node_name" validate:"required"`
	SemanticClass     string            `json:"semantic_class,omitempty" yaml:"semantic_class,omitempty"`
	NodeSchema        map[string]any    `json:"node_schema,omitempty" yaml:"node_schema,omitempty"`
	TSCode            string            `json:"ts_code,omitempty" yaml:"ts_code,omitempty"`
	TSFile            string            `json:"ts_file,omitempty" yaml:"ts_file,omitempty"`
	Properties        []Property        `json:"properties,omitempty" yaml:"properties,omitempty" validate:"dive"`
	ExecutionContract ExecutionContract `json:"execution_contract" yaml:"execution_contract,omitempty"`
}

// Context converts the descriptor into generator input
func (d Descriptor) Context() Context {
	schema := d.NodeSchema
	if schema == nil {
		schema = map[string]any{}
	}
	props := d.Properties
	if props == nil {
		props = []Property{}
	}
	return Context{
		NodeName:   d.NodeName,
		NodeSchema: schema,
		TSCode:     d.TSCode,
		Properties: props,
		Contract:   d.ExecutionContract,
	}
}

var (
	validate = validator.New()

	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func descriptorValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("descriptor.schema.json", bytes.NewReader(descriptorSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile("descriptor.schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a decoded JSON/YAML document against the descriptor schema
func ValidateDocument(doc any) error {
	schema, err := descriptorValidator()
	if err != nil {
		return fmt.Errorf("descriptor schema: %w", err)
	}
	normalized, err := normalize(doc)
	if err != nil {
		return err
	}
	return schema.Validate(normalized)
}

// Validate checks the struct-level rules of a decoded descriptor
func Validate(d *Descriptor) error {
	return validate.Struct(d)
}

// ParseDescriptor decodes and validates a descriptor. The format is taken
// from the file extension of name (.yaml/.yml, otherwise JSON).
func ParseDescriptor(name string, data []byte) (*Descriptor, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: invalid yaml: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: invalid json: %w", name, err)
		}
	}
	return DescriptorFromDocument(name, doc)
}

// DescriptorFromDocument validates an already decoded document and converts it
func DescriptorFromDocument(name string, doc any) (*Descriptor, error) {
	normalized, err := normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := ValidateDocument(normalized); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var d Descriptor
	if err := roundTrip(normalized, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := Validate(&d); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &d, nil
}

// normalize converts YAML-decoded values into the JSON data model
func normalize(doc any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document is not JSON compatible: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
