package gen

import (
	"fmt"

	skills "github.com/manarouei/agent-skills-sub004"
	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

// RouteToBackend is the loosely typed entrypoint: class may be any tag
// accepted by ParseSemanticClass and node any context shape (see asContext).
// It always returns a result.
func RouteToBackend(class any, node any) *Result {
	return Route(ParseSemanticClass(class), asContext(node))
}

// Route dispatches node to the backend registered for class, falling back
// to the HTTP-REST backend.
func Route(class SemanticClass, node contract.Context) (res *Result) {
	backend, ok := DefaultRegistry.Get(class)
	if !ok {
		class = ClassHTTPREST
		backend, ok = DefaultRegistry.Get(class)
	}
	if !ok {
		return emptyResult(class, node, "no backend registered")
	}

	defer func() {
		if r := recover(); r != nil {
			skills.Logger.Error().Str("node", node.NodeName).Str("class", class.String()).Msgf("generator panicked: %v", r)
			res = emptyResult(class, node, fmt.Sprintf("generator failed: %v", r))
		}
	}()

	skills.Logger.Debug().Str("node", node.NodeName).Str("class", class.String()).Msg("routing node")
	res = backend.Generate(node)
	if res == nil {
		res = emptyResult(class, node, "generator returned no result")
	}
	return res
}

func asContext(node any) contract.Context {
	switch v := node.(type) {
	case contract.Context:
		return v
	case *contract.Context:
		if v != nil {
			return *v
		}
	case contract.Descriptor:
		return v.Context()
	case *contract.Descriptor:
		if v != nil {
			return v.Context()
		}
	case map[string]any:
		return contract.ContextFromMap(v)
	}
	return contract.ContextFromMap(nil)
}

func emptyResult(class SemanticClass, node contract.Context, note string) *Result {
	ctx := NewGeneratorContext(class, node)
	ctx.Note("%s", note)
	return ctx.Result()
}
