package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PropertyOption is one choice of an options-type property
type PropertyOption struct {
	Name        string `json:"name" yaml:"name"`
	Value       any    `json:"value,omitempty" yaml:"value,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ValueString returns the option value as text, falling back to the name
func (o PropertyOption) ValueString() string {
	switch v := o.Value.(type) {
	case nil:
		return o.Name
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Property is one declared node parameter
type Property struct {
	Name        string           `json:"name" yaml:"name" validate:"required"`
	DisplayName string           `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Type        string           `json:"type,omitempty" yaml:"type,omitempty"`
	Default     any              `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []PropertyOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Context is everything a generator receives about one node
type Context struct {
	NodeName   string
	NodeSchema map[string]any
	TSCode     string
	Properties []Property
	Contract   ExecutionContract
}

// Property returns the property called name
func (c Context) Property(name string) (Property, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// HasProperty reports whether a property called name is declared
func (c Context) HasProperty(name string) bool {
	_, ok := c.Property(name)
	return ok
}

// OptionValues lists the option values of property name in declaration order,
// without duplicates. Several properties may share a name (one per resource).
func (c Context) OptionValues(name string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range c.Properties {
		if p.Name != name {
			continue
		}
		for _, o := range p.Options {
			v := o.ValueString()
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// DefaultString returns the default of property name as text
func (c Context) DefaultString(name string) string {
	p, ok := c.Property(name)
	if !ok || p.Default == nil {
		return ""
	}
	if s, ok := p.Default.(string); ok {
		return s
	}
	return fmt.Sprint(p.Default)
}

// ContextFromMap decodes a loosely typed context. Missing or wrongly typed
// keys fall back to "", {} and [] instead of failing.
func ContextFromMap(m map[string]any) Context {
	ctx := Context{
		NodeSchema: map[string]any{},
		Properties: []Property{},
	}
	if m == nil {
		return ctx
	}
	if s, ok := m["node_name"].(string); ok {
		ctx.NodeName = s
	}
	if s, ok := m["ts_code"].(string); ok {
		ctx.TSCode = s
	}
	if schema, ok := m["node_schema"].(map[string]any); ok {
		ctx.NodeSchema = schema
	}
	ctx.Properties = DecodeProperties(m["properties"])
	ctx.Contract = DecodeContract(m["execution_contract"])
	return ctx
}

// DecodeProperties decodes a property list; entries that do not decode are skipped
func DecodeProperties(raw any) []Property {
	out := []Property{}
	switch list := raw.(type) {
	case []Property:
		return append(out, list...)
	case []any:
		for _, el := range list {
			var p Property
			if roundTrip(el, &p) == nil && p.Name != "" {
				out = append(out, p)
			}
		}
	case []map[string]any:
		for _, el := range list {
			var p Property
			if roundTrip(el, &p) == nil && p.Name != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// DecodeContract decodes an execution contract section by section, so one
// malformed section does not discard the others.
func DecodeContract(raw any) ExecutionContract {
	var c ExecutionContract
	switch v := raw.(type) {
	case ExecutionContract:
		return v
	case *ExecutionContract:
		if v != nil {
			return *v
		}
		return c
	case map[string]any:
		_ = roundTrip(v["http_config"], &c.HTTPConfig)
		_ = roundTrip(v["credentials"], &c.Credentials)
		_ = roundTrip(v["connection"], &c.Connection)
		_ = roundTrip(v["sdk_config"], &c.SDKConfig)
		_ = roundTrip(v["io_cardinality"], &c.IOCardinality)
		if tc, ok := v["transform_config"].(map[string]any); ok {
			c.TransformConfig = tc
		}
		if st, ok := v["state"].(map[string]any); ok {
			c.State = st
		}
	}
	return c
}

func roundTrip(in any, out any) error {
	if in == nil {
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func intOf(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}
