package nodekit

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Operator is a comparison operator used by IF, Switch and Filter nodes
type Operator string

const (
	OpEqual       Operator = "equal"
	OpNotEqual    Operator = "notEqual"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
	OpIsEmpty     Operator = "isEmpty"
	OpIsNotEmpty  Operator = "isNotEmpty"
	OpLarger      Operator = "larger"
	OpSmaller     Operator = "smaller"
	OpRegex       Operator = "regex"
)

// Combine decides how several conditions are joined
type Combine string

const (
	CombineAll Combine = "all"
	CombineAny Combine = "any"
)

// ParseCombine maps "any"/"or" to CombineAny and everything else to CombineAll
func ParseCombine(s string) Combine {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "or":
		return CombineAny
	default:
		return CombineAll
	}
}

// Condition compares the value at Field against Value
type Condition struct {
	Field     string   `json:"field"`
	Operation Operator `json:"operation"`
	Value     any      `json:"value"`
}

// Compare applies op to value and expected. It is total: type mismatches,
// non-numeric operands for numeric operators and bad patterns return false.
func Compare(value any, op Operator, expected any) bool {
	switch op {
	case OpEqual:
		return equalValues(value, expected)
	case OpNotEqual:
		return !equalValues(value, expected)
	case OpContains:
		return containsValue(value, expected)
	case OpNotContains:
		return !containsValue(value, expected)
	case OpStartsWith:
		s, ok := asString(value)
		return ok && strings.HasPrefix(s, stringify(expected))
	case OpEndsWith:
		s, ok := asString(value)
		return ok && strings.HasSuffix(s, stringify(expected))
	case OpIsEmpty:
		return isEmpty(value)
	case OpIsNotEmpty:
		return !isEmpty(value)
	case OpLarger, OpSmaller:
		a, okA := ToFloat(value)
		b, okB := ToFloat(expected)
		if !okA || !okB {
			return false
		}
		if op == OpLarger {
			return a > b
		}
		return a < b
	case OpRegex:
		s, ok := asString(value)
		if !ok {
			return false
		}
		re, err := regexp.Compile(stringify(expected))
		if err != nil {
			return false
		}
		return re.MatchString(s)
	default:
		return false
	}
}

// EvaluateConditions checks data against conditions. With no conditions,
// CombineAll yields true and CombineAny yields false.
func EvaluateConditions(data map[string]any, conditions []Condition, combine Combine) bool {
	if combine == CombineAny {
		for _, c := range conditions {
			if Compare(GetPath(data, c.Field), c.Operation, c.Value) {
				return true
			}
		}
		return false
	}
	for _, c := range conditions {
		if !Compare(GetPath(data, c.Field), c.Operation, c.Value) {
			return false
		}
	}
	return true
}

// ParseConditions decodes a conditions parameter. It accepts a list of
// objects or an object holding the list under "conditions".
// Entries without a field are skipped.
func ParseConditions(raw any) []Condition {
	raw = decodeParam(raw)
	if m, ok := raw.(map[string]any); ok {
		raw = m["conditions"]
	}
	list, ok := raw.([]any)
	if !ok {
		return []Condition{}
	}
	out := make([]Condition, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		field := firstString(m, "field", "leftValue", "key", "value1")
		if field == "" {
			continue
		}
		op := firstString(m, "operation", "operator", "op")
		if op == "" {
			op = string(OpEqual)
		}
		expected, ok := m["value"]
		if !ok {
			expected = firstPresent(m, "rightValue", "value2")
		}
		out = append(out, Condition{Field: field, Operation: Operator(op), Value: expected})
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := ToFloat(a); ok {
		if fb, ok := ToFloat(b); ok {
			return fa == fb
		}
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return stringify(a) == stringify(b)
}

func containsValue(value, expected any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, stringify(expected))
	case []any:
		for _, el := range v {
			if equalValues(el, expected) {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := v[stringify(expected)]
		return ok
	default:
		return false
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case nil, map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
