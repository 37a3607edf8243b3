package gen

import (
	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// Backend converts a node of one semantic class into adapter source
type Backend interface {
	// Class returns the semantic class this backend handles
	Class() SemanticClass

	// Generate emits the adapter code for node. It never fails: anything it
	// cannot resolve degrades to a default and a conversion note.
	Generate(node contract.Context) *Result
}

// Registry holds all registered backends
type Registry struct {
	backends map[SemanticClass]Backend
}

// NewRegistry creates a new backend registry
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[SemanticClass]Backend),
	}
}

// Register registers a backend for its class
func (r *Registry) Register(b Backend) {
	r.backends[b.Class()] = b
}

// Get returns the backend for a class
func (r *Registry) Get(class SemanticClass) (Backend, bool) {
	b, ok := r.backends[class]
	return b, ok
}

// DefaultRegistry is the default backend registry
var DefaultRegistry = NewRegistry()

// RegisterBackend registers a backend with the default registry
func RegisterBackend(b Backend) {
	DefaultRegistry.Register(b)
}

// init registers all built-in backends
func init() {
	RegisterBackend(&HTTPRESTGenerator{})
	RegisterBackend(&TCPClientGenerator{})
	RegisterBackend(&SDKClientGenerator{})
	RegisterBackend(&PureTransformGenerator{})
	RegisterBackend(&StatefulGenerator{})
}
