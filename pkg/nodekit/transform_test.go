package nodekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFields_DotNotationIdempotent(t *testing.T) {
	in := map[string]any{"keep": true}
	assign := []Assignment{{Name: "a.b.c", Value: 1}}

	once := SetFields(in, assign, nil, false)
	twice := SetFields(once, assign, nil, false)
	assert.Equal(t, once, twice)
	assert.Equal(t, map[string]any{"keep": true, "a": map[string]any{"b": map[string]any{"c": 1}}}, once)
	assert.Equal(t, map[string]any{"keep": true}, in, "input untouched")
}

func TestSetFields_RemoveMissingPathIsNoop(t *testing.T) {
	in := map[string]any{"a": map[string]any{"b": 1}, "n": 2}
	out := SetFields(in, nil, []string{"x.y.z"}, false)
	assert.Equal(t, in, out)

	out = SetFields(in, nil, []string{"a.b"}, false)
	assert.Equal(t, map[string]any{"a": map[string]any{}, "n": 2}, out)
}

func TestSetFields_KeepOnlySet(t *testing.T) {
	out := SetFields(map[string]any{"drop": 1}, []Assignment{{Name: "x", Value: "v"}}, nil, true)
	assert.Equal(t, map[string]any{"x": "v"}, out)
}

func TestSetFields_OverwritesScalarIntermediate(t *testing.T) {
	out := SetFields(map[string]any{"a": 5}, []Assignment{{Name: "a.b", Value: 1}}, nil, false)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, out)
}

func TestParseAssignments(t *testing.T) {
	got := ParseAssignments(map[string]any{
		"string": []any{map[string]any{"name": "s", "value": "x"}},
		"number": []any{map[string]any{"name": "n", "value": 2}},
	})
	assert.Equal(t, []Assignment{{Name: "s", Value: "x"}, {Name: "n", Value: 2}}, got)

	got = ParseAssignments(`[{"name":"a.b","value":true},{"value":1}]`)
	assert.Equal(t, []Assignment{{Name: "a.b", Value: true}}, got)
}

func TestRouteItems_FirstMatchAndFallback(t *testing.T) {
	in := items(
		map[string]any{"kind": "a"},
		map[string]any{"kind": "b"},
		map[string]any{"kind": "c"},
	)
	rules := []SwitchRule{
		{Conditions: []Condition{{Field: "kind", Operation: OpEqual, Value: "a"}}, Output: 0},
		{Conditions: []Condition{{Field: "kind", Operation: OpNotEqual, Value: "c"}}, Output: 1},
		{Conditions: []Condition{{Field: "kind", Operation: OpIsNotEmpty}}, Output: 0},
	}

	out := RouteItems(in[:2], rules, 3, 2)
	assert.Equal(t, []map[string]any{{"kind": "a"}}, jsonOf(out[0]))
	assert.Equal(t, []map[string]any{{"kind": "b"}}, jsonOf(out[1]))
	assert.Empty(t, out[2])

	noMatch := []SwitchRule{{Conditions: []Condition{{Field: "kind", Operation: OpEqual, Value: "z"}}}}
	out = RouteItems(in, noMatch, 2, 1)
	assert.Len(t, out[1], 3)

	out = RouteItems(in, noMatch, 2, -1)
	assert.Empty(t, out[0])
	assert.Empty(t, out[1])
}

func TestParseSwitchRules(t *testing.T) {
	rules := ParseSwitchRules(map[string]any{"rules": []any{
		map[string]any{"conditions": []any{map[string]any{"field": "a", "operation": "equal", "value": 1}}, "output": 2},
		map[string]any{"field": "b", "operation": "isEmpty"},
	}})
	require.Len(t, rules, 2)
	assert.Equal(t, 2, rules[0].Output)
	assert.Equal(t, 1, rules[1].Output)
	require.Len(t, rules[1].Conditions, 1)
	assert.Equal(t, "b", rules[1].Conditions[0].Field)
}

func TestFilterItems(t *testing.T) {
	in := items(map[string]any{"n": 1}, map[string]any{"n": 5}, map[string]any{"n": "x"})
	kept, discarded := SplitByConditions(in, []Condition{{Field: "n", Operation: OpLarger, Value: 2}}, CombineAll)
	assert.Equal(t, []map[string]any{{"n": 5}}, jsonOf(kept))
	assert.Len(t, discarded, 2)
	assert.Equal(t, jsonOf(kept), jsonOf(FilterItems(in, []Condition{{Field: "n", Operation: OpLarger, Value: 2}}, CombineAll)))
}

func TestExpandItems(t *testing.T) {
	in := items(
		map[string]any{"tags": []any{"a", "b"}},
		map[string]any{"tags": "solo"},
	)
	out := ExpandItems(in, "tags")
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].JSON["_iteratedItem"])
	assert.Equal(t, 1, out[1].JSON["_iterationIndex"])
	assert.Equal(t, map[string]any{"tags": "solo"}, out[2].JSON)
}

func TestReindexItems(t *testing.T) {
	out := ReindexItems(items(map[string]any{"v": "a"}, map[string]any{"v": "b"}))
	assert.Equal(t, 0, out[0].JSON["_itemIndex"])
	assert.Equal(t, 1, out[1].JSON["_itemIndex"])
}

func TestGetPath(t *testing.T) {
	data := map[string]any{
		"a":     map[string]any{"list": []any{map[string]any{"c": 3}}},
		"dot.k": "literal",
	}
	assert.Equal(t, 3, GetPath(data, "a.list.0.c"))
	assert.Equal(t, "literal", GetPath(data, "dot.k"))
	assert.Nil(t, GetPath(data, "a.list.9.c"))
	assert.Nil(t, GetPath(data, "a.list.x"))
	assert.Nil(t, GetPath(nil, "a"))
	assert.Nil(t, GetPath(data, ""))
}
