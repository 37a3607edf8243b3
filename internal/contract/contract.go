package contract

// ItemMapping describes how input items relate to output items
type ItemMapping string

const (
	Mapping1To1   ItemMapping = "1:1"
	Mapping1ToN   ItemMapping = "1:N"
	MappingNToM   ItemMapping = "N:M"
	MappingRoute  ItemMapping = "route"
	MappingFilter ItemMapping = "filter"
)

// HTTPConfig is the REST part of an execution contract
type HTTPConfig struct {
	BaseURL                string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	BaseURLFromCredentials bool   `json:"base_url_from_credentials,omitempty" yaml:"base_url_from_credentials,omitempty"`
	AuthHeader             string `json:"auth_header,omitempty" yaml:"auth_header,omitempty" validate:"omitempty,oneof=bearer token"`
}

// CredentialsConfig names the credential type requested at runtime.
// Contracts never carry credential values.
type CredentialsConfig struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// ConnectionConfig names the client library of TCP/SDK nodes
type ConnectionConfig struct {
	Library string `json:"library,omitempty" yaml:"library,omitempty"`
}

// SDKConfig describes how an SDK client is initialised
type SDKConfig struct {
	ClientClass string `json:"client_class,omitempty" yaml:"client_class,omitempty"`
	// InitFromCredentials maps SDK parameter names to credential fields
	InitFromCredentials map[string]string `json:"init_from_credentials,omitempty" yaml:"init_from_credentials,omitempty"`
}

// IOCardinality declares the node outputs and the item relation
type IOCardinality struct {
	OutputNames []string    `json:"output_names,omitempty" yaml:"output_names,omitempty"`
	ItemMapping ItemMapping `json:"item_mapping,omitempty" yaml:"item_mapping,omitempty" validate:"omitempty,oneof=1:1 1:N N:M route filter"`
}

// ExecutionContract describes how a generated adapter must behave.
// One semantic class decides which parts are read; the rest is ignored.
// Generators receive it by value and never modify it.
type ExecutionContract struct {
	HTTPConfig      HTTPConfig        `json:"http_config" yaml:"http_config,omitempty"`
	Credentials     CredentialsConfig `json:"credentials" yaml:"credentials,omitempty"`
	Connection      ConnectionConfig  `json:"connection" yaml:"connection,omitempty"`
	SDKConfig       SDKConfig         `json:"sdk_config" yaml:"sdk_config,omitempty"`
	IOCardinality   IOCardinality     `json:"io_cardinality" yaml:"io_cardinality,omitempty"`
	TransformConfig map[string]any    `json:"transform_config,omitempty" yaml:"transform_config,omitempty"`
	State           map[string]any    `json:"state,omitempty" yaml:"state,omitempty"`
}

// StateInt reads an integer from the state section
func (c ExecutionContract) StateInt(key string, def int) int {
	return intOf(c.State[key], def)
}

// TransformString reads a string from the transform section
func (c ExecutionContract) TransformString(key, def string) string {
	if s, ok := c.TransformConfig[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Merge overlays the non-zero parts of o onto c and returns the result
func (c ExecutionContract) Merge(o ExecutionContract) ExecutionContract {
	out := c
	if o.HTTPConfig.BaseURL != "" {
		out.HTTPConfig.BaseURL = o.HTTPConfig.BaseURL
	}
	if o.HTTPConfig.BaseURLFromCredentials {
		out.HTTPConfig.BaseURLFromCredentials = true
	}
	if o.HTTPConfig.AuthHeader != "" {
		out.HTTPConfig.AuthHeader = o.HTTPConfig.AuthHeader
	}
	if o.Credentials.Type != "" {
		out.Credentials.Type = o.Credentials.Type
	}
	if o.Connection.Library != "" {
		out.Connection.Library = o.Connection.Library
	}
	if o.SDKConfig.ClientClass != "" {
		out.SDKConfig.ClientClass = o.SDKConfig.ClientClass
	}
	if len(o.SDKConfig.InitFromCredentials) > 0 {
		out.SDKConfig.InitFromCredentials = mergeStrings(c.SDKConfig.InitFromCredentials, o.SDKConfig.InitFromCredentials)
	}
	if len(o.IOCardinality.OutputNames) > 0 {
		out.IOCardinality.OutputNames = append([]string(nil), o.IOCardinality.OutputNames...)
	}
	if o.IOCardinality.ItemMapping != "" {
		out.IOCardinality.ItemMapping = o.IOCardinality.ItemMapping
	}
	if len(o.TransformConfig) > 0 {
		out.TransformConfig = mergeAny(c.TransformConfig, o.TransformConfig)
	}
	if len(o.State) > 0 {
		out.State = mergeAny(c.State, o.State)
	}
	return out
}

func mergeStrings(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func mergeAny(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
