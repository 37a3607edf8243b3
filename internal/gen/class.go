package gen

import (
	"fmt"
	"strings"
)

// SemanticClass is the interaction pattern a node is converted with
type SemanticClass int

const (
	ClassHTTPREST SemanticClass = iota
	ClassTCPClient
	ClassSDKClient
	ClassPureTransform
	ClassStateful
)

var classNames = [...]string{
	ClassHTTPREST:      "http_rest",
	ClassTCPClient:     "tcp_client",
	ClassSDKClient:     "sdk_client",
	ClassPureTransform: "pure_transform",
	ClassStateful:      "stateful",
}

func (c SemanticClass) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return classNames[ClassHTTPREST]
	}
	return classNames[c]
}

func (c SemanticClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *SemanticClass) UnmarshalText(b []byte) error {
	*c = ParseSemanticClass(string(b))
	return nil
}

// Classes lists every semantic class in declaration order
func Classes() []SemanticClass {
	out := make([]SemanticClass, len(classNames))
	for i := range classNames {
		out[i] = SemanticClass(i)
	}
	return out
}

type valuer interface {
	Value() string
}

// ParseSemanticClass turns a class tag into a SemanticClass. It accepts
// strings, SemanticClass values, anything with a Value() string method and
// fmt.Stringer. Unknown or empty tags map to ClassHTTPREST.
func ParseSemanticClass(v any) SemanticClass {
	var tag string
	switch t := v.(type) {
	case nil:
		return ClassHTTPREST
	case SemanticClass:
		if t < 0 || int(t) >= len(classNames) {
			return ClassHTTPREST
		}
		return t
	case *SemanticClass:
		if t == nil {
			return ClassHTTPREST
		}
		return ParseSemanticClass(*t)
	case string:
		tag = t
	case valuer:
		tag = t.Value()
	case fmt.Stringer:
		tag = t.String()
	default:
		tag = fmt.Sprint(t)
	}

	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "http_rest":
		return ClassHTTPREST
	case "tcp_client":
		return ClassTCPClient
	case "sdk_client":
		return ClassSDKClient
	case "pure_transform":
		return ClassPureTransform
	case "stateful":
		return ClassStateful
	default:
		return ClassHTTPREST
	}
}
