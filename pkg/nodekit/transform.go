package nodekit

import (
	"strings"
)

// SwitchRule sends items matching all of its conditions to Output
type SwitchRule struct {
	Conditions []Condition `json:"conditions"`
	Combine    Combine     `json:"combine"`
	Output     int         `json:"output"`
}

// ParseSwitchRules decodes a rules parameter: a list of rule objects, or an
// object with the list under "rules" or "values". Rules without an explicit
// output index take their position.
func ParseSwitchRules(raw any) []SwitchRule {
	raw = decodeParam(raw)
	if m, ok := raw.(map[string]any); ok {
		if v, ok := m["rules"]; ok {
			raw = v
		} else {
			raw = m["values"]
		}
	}
	list, ok := raw.([]any)
	if !ok {
		return []SwitchRule{}
	}
	out := make([]SwitchRule, 0, len(list))
	for i, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		rule := SwitchRule{Output: i, Combine: ParseCombine(firstString(m, "combine", "combinator"))}
		if f, ok := ToFloat(m["output"]); ok {
			rule.Output = int(f)
		}
		rule.Conditions = ParseConditions(m["conditions"])
		if len(rule.Conditions) == 0 && firstString(m, "field", "leftValue") != "" {
			rule.Conditions = ParseConditions([]any{m})
		}
		out = append(out, rule)
	}
	return out
}

// RouteItems evaluates rules in order; the first rule whose conditions match
// decides the output. Unmatched items go to fallback, or are dropped when
// fallback is -1. Out-of-range indexes are dropped.
func RouteItems(items []Item, rules []SwitchRule, outputs int, fallback int) [][]Item {
	if outputs < 1 {
		outputs = 1
	}
	routed := make([][]Item, outputs)
	for i := range routed {
		routed[i] = []Item{}
	}
	for _, it := range items {
		target := fallback
		for _, r := range rules {
			if EvaluateConditions(it.JSON, r.Conditions, r.Combine) {
				target = r.Output
				break
			}
		}
		if target < 0 || target >= outputs {
			continue
		}
		routed[target] = append(routed[target], it)
	}
	return routed
}

// SplitByConditions partitions items into those that pass and those that fail
func SplitByConditions(items []Item, conditions []Condition, combine Combine) (kept, discarded []Item) {
	kept = []Item{}
	discarded = []Item{}
	for _, it := range items {
		if EvaluateConditions(it.JSON, conditions, combine) {
			kept = append(kept, it)
		} else {
			discarded = append(discarded, it)
		}
	}
	return kept, discarded
}

// FilterItems returns the items passing conditions
func FilterItems(items []Item, conditions []Condition, combine Combine) []Item {
	kept, _ := SplitByConditions(items, conditions, combine)
	return kept
}

// Assignment sets Name (dot-notation) to Value
type Assignment struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ParseAssignments decodes the Set node "values"/"assignments" parameter.
// Both a flat list and the typed groups ({"string": [...], "number": [...]}) are accepted.
func ParseAssignments(raw any) []Assignment {
	raw = decodeParam(raw)
	var list []any
	switch v := raw.(type) {
	case []any:
		list = v
	case map[string]any:
		if a, ok := v["assignments"].([]any); ok {
			list = a
			break
		}
		for _, group := range []string{"string", "number", "boolean", "json", "object", "array"} {
			if g, ok := v[group].([]any); ok {
				list = append(list, g...)
			}
		}
	}
	out := make([]Assignment, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(m, "name", "field", "key")
		if name == "" {
			continue
		}
		out = append(out, Assignment{Name: name, Value: m["value"]})
	}
	return out
}

// SetFields applies assignments then removals to one item's data.
// With keepOnlySet the result only contains the assigned paths.
func SetFields(data map[string]any, assignments []Assignment, remove []string, keepOnlySet bool) map[string]any {
	base := data
	if keepOnlySet {
		base = map[string]any{}
	}
	out := cloneMap(base)
	for _, a := range assignments {
		out = SetPath(out, a.Name, cloneValue(a.Value))
	}
	for _, p := range remove {
		out = RemovePath(out, strings.TrimSpace(p))
	}
	return out
}

// SetItems applies SetFields to every item
func SetItems(items []Item, assignments []Assignment, remove []string, keepOnlySet bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		next := it.Clone()
		next.JSON = SetFields(it.JSON, assignments, remove, keepOnlySet)
		out = append(out, next)
	}
	return out
}

// ReindexItems copies items adding their position under "_itemIndex"
func ReindexItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for i, it := range items {
		next := it.Clone()
		next.JSON["_itemIndex"] = i
		out = append(out, next)
	}
	return out
}

// ExpandItems emits one item per element of the array at field, tagged with
// "_iteratedItem" and "_iterationIndex". Items whose field is not an array
// pass through unchanged.
func ExpandItems(items []Item, field string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		list, ok := decodeParam(GetPath(it.JSON, field)).([]any)
		if !ok {
			out = append(out, it.Clone())
			continue
		}
		for i, el := range list {
			next := it.Clone()
			next.JSON["_iteratedItem"] = cloneValue(el)
			next.JSON["_iterationIndex"] = i
			out = append(out, next)
		}
	}
	return out
}
