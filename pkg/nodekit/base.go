package nodekit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Adapter is the entrypoint every generated node satisfies.
// The outer slice holds output branches, the inner one the items on each branch.
type Adapter interface {
	Execute(ctx context.Context) ([][]Item, error)
}

// Base carries what a generated adapter needs from the workflow engine:
// parameters, credentials, input items and shared services.
// One Base serves one adapter instance and is never used concurrently.
type Base struct {
	Name string

	// Parameters are the node parameters. ItemParameters, when set, holds
	// per-item overrides (resolved expressions) indexed by item.
	Parameters     map[string]any
	ItemParameters []map[string]any

	// Inputs holds the input branches; most nodes only read branch 0.
	Inputs [][]Item

	Credentials CredentialStore
	HTTPClient  *http.Client
	Logger      zerolog.Logger

	// Workflows and Runner are only needed by sub-workflow adapters.
	Workflows WorkflowStore
	Runner    WorkflowRunner
}

// Option configures a Base
type Option func(*Base)

// WithParameters sets the node parameters
func WithParameters(params map[string]any) Option {
	return func(b *Base) { b.Parameters = params }
}

// WithItemParameters sets per-item parameter overrides
func WithItemParameters(params []map[string]any) Option {
	return func(b *Base) { b.ItemParameters = params }
}

// WithInput sets the input branches
func WithInput(branches ...[]Item) Option {
	return func(b *Base) { b.Inputs = branches }
}

// WithCredentials sets the credential store
func WithCredentials(store CredentialStore) Option {
	return func(b *Base) { b.Credentials = store }
}

// WithHTTPClient overrides the HTTP client used by request helpers
func WithHTTPClient(c *http.Client) Option {
	return func(b *Base) { b.HTTPClient = c }
}

// WithLogger sets the adapter logger
func WithLogger(l zerolog.Logger) Option {
	return func(b *Base) { b.Logger = l }
}

// WithWorkflows wires the sub-workflow collaborators
func WithWorkflows(store WorkflowStore, runner WorkflowRunner) Option {
	return func(b *Base) {
		b.Workflows = store
		b.Runner = runner
	}
}

// NewBase creates a Base for the named node
func NewBase(name string, opts ...Option) *Base {
	b := &Base{
		Name:       name,
		Parameters: map[string]any{},
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetNodeParameter resolves a parameter for an item. Names may use
// dot-notation to reach into collection parameters ("options.timeout").
func (b *Base) GetNodeParameter(name string, itemIndex int, def any) any {
	if itemIndex >= 0 && itemIndex < len(b.ItemParameters) {
		if v := GetPath(b.ItemParameters[itemIndex], name); v != nil {
			return v
		}
	}
	if v := GetPath(b.Parameters, name); v != nil {
		return v
	}
	return def
}

// GetCredentials requests the credentials of the given type. They are read
// on every call and never cached by the adapter.
func (b *Base) GetCredentials(ctx context.Context, typeName string) (Credentials, error) {
	if b.Credentials == nil {
		return nil, &CredentialNotFoundError{Type: typeName}
	}
	c, err := b.Credentials.GetCredentials(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load credentials %s: %w", b.Name, typeName, err)
	}
	return c, nil
}

// GetInputData returns the items of the first input branch
func (b *Base) GetInputData() []Item {
	return b.GetInputBranch(0)
}

// GetInputBranch returns the items of input branch i, empty if absent
func (b *Base) GetInputBranch(i int) []Item {
	if i < 0 || i >= len(b.Inputs) {
		return []Item{}
	}
	return b.Inputs[i]
}

// ExecutionItems returns the first input branch, or one empty item when the
// node runs without input so single-shot operations still execute once.
func (b *Base) ExecutionItems() []Item {
	items := b.GetInputData()
	if len(items) == 0 {
		return []Item{NewItem(nil)}
	}
	return items
}

// ItemJSON returns a copy of the JSON of input item i, empty if absent
func (b *Base) ItemJSON(i int) map[string]any {
	items := b.GetInputData()
	if i < 0 || i >= len(items) {
		return map[string]any{}
	}
	return items[i].Clone().JSON
}

// HTTP returns the client used by request helpers
func (b *Base) HTTP() *http.Client {
	if b.HTTPClient != nil {
		return b.HTTPClient
	}
	return &http.Client{Timeout: DefaultRequestTimeout}
}

// StringParam returns a parameter as a string
func (b *Base) StringParam(name string, itemIndex int, def string) string {
	v := b.GetNodeParameter(name, itemIndex, nil)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// IntParam returns a parameter as an int
func (b *Base) IntParam(name string, itemIndex int, def int) int {
	if f, ok := ToFloat(b.GetNodeParameter(name, itemIndex, nil)); ok {
		return int(f)
	}
	return def
}

// FloatParam returns a parameter as a float64
func (b *Base) FloatParam(name string, itemIndex int, def float64) float64 {
	if f, ok := ToFloat(b.GetNodeParameter(name, itemIndex, nil)); ok {
		return f
	}
	return def
}

// BoolParam returns a parameter as a bool
func (b *Base) BoolParam(name string, itemIndex int, def bool) bool {
	v := b.GetNodeParameter(name, itemIndex, nil)
	if v == nil {
		return def
	}
	return IsTruthy(v)
}

// RequireString returns a non-empty string parameter or a MissingParameterError naming it
func (b *Base) RequireString(name string, itemIndex int) (string, error) {
	s := strings.TrimSpace(b.StringParam(name, itemIndex, ""))
	if s == "" {
		return "", &MissingParameterError{Name: name}
	}
	return s, nil
}

// JSONParam returns a parameter that may hold JSON text or an already decoded value.
// Unparseable text yields an InvalidJSONParameterError naming the parameter.
func (b *Base) JSONParam(name string, itemIndex int) (any, error) {
	v := b.GetNodeParameter(name, itemIndex, nil)
	s, ok := v.(string)
	if !ok {
		return decodeJSONValue(v), nil
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, &InvalidJSONParameterError{Name: name, Err: err}
	}
	return out, nil
}

// ObjectParam returns a parameter as a JSON object (collection or JSON text).
// Missing parameters yield an empty map.
func (b *Base) ObjectParam(name string, itemIndex int) (map[string]any, error) {
	v, err := b.JSONParam(name, itemIndex)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &InvalidJSONParameterError{Name: name, Err: fmt.Errorf("expected an object, got %T", v)}
	}
	return m, nil
}
