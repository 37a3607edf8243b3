package nodekit

import (
	"strconv"
	"strings"
)

// GetPath resolves a dot-separated path ("a.b.0.c") inside data.
// Unresolvable paths return nil, never panic.
func GetPath(data map[string]any, path string) any {
	if data == nil || path == "" {
		return nil
	}
	if v, ok := data[path]; ok {
		return v
	}
	var cur any = data
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

// SetPath returns a copy of data with value stored at path, creating
// intermediate objects as needed. Non-object intermediates are replaced.
func SetPath(data map[string]any, path string, value any) map[string]any {
	out := cloneMap(data)
	if path == "" {
		return out
	}
	parts := strings.Split(path, ".")
	cur := out
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return out
}

// RemovePath returns a copy of data without the value at path.
// Removing a path that does not exist is a no-op.
func RemovePath(data map[string]any, path string) map[string]any {
	out := cloneMap(data)
	if path == "" {
		return out
	}
	parts := strings.Split(path, ".")
	cur := out
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			return out
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
	return out
}
