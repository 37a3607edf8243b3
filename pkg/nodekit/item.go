package nodekit

import (
	"encoding/json"
	"strings"
)

// Item is one unit of data flowing between nodes
type Item struct {
	JSON   map[string]any `json:"json"`
	Binary map[string]any `json:"binary,omitempty"`
}

// NewItem wraps a JSON object into an item
func NewItem(data map[string]any) Item {
	if data == nil {
		data = map[string]any{}
	}
	return Item{JSON: data}
}

// Clone returns a deep copy of the item's JSON and a shallow copy of its binary map
func (it Item) Clone() Item {
	out := Item{JSON: cloneMap(it.JSON)}
	if it.Binary != nil {
		out.Binary = make(map[string]any, len(it.Binary))
		for k, v := range it.Binary {
			out.Binary[k] = v
		}
	}
	return out
}

// ItemsFromResult converts an arbitrary API result into items.
// Arrays become one item per element, objects become one item,
// scalars are wrapped under the "value" key.
func ItemsFromResult(result any) []Item {
	switch v := result.(type) {
	case nil:
		return []Item{}
	case []Item:
		return v
	case []any:
		out := make([]Item, 0, len(v))
		for _, el := range v {
			out = append(out, toItem(el))
		}
		return out
	case []map[string]any:
		out := make([]Item, 0, len(v))
		for _, el := range v {
			out = append(out, NewItem(el))
		}
		return out
	default:
		return []Item{toItem(v)}
	}
}

func toItem(v any) Item {
	if m, ok := v.(map[string]any); ok {
		return NewItem(m)
	}
	return NewItem(map[string]any{"value": v})
}

// cloneMap deep-copies nested maps and slices produced by JSON decoding
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, el := range val {
			cp[i] = cloneValue(el)
		}
		return cp
	default:
		return val
	}
}

// decodeJSONValue normalises Go values (structs, typed slices) to their JSON form
func decodeJSONValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// decodeParam is decodeJSONValue that also parses JSON object/array text
func decodeParam(v any) any {
	if s, ok := v.(string); ok {
		t := strings.TrimSpace(s)
		if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
			var out any
			if err := json.Unmarshal([]byte(t), &out); err == nil {
				return out
			}
		}
		return v
	}
	return decodeJSONValue(v)
}
