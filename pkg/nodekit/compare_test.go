package nodekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_NumericOperatorsFailClosed(t *testing.T) {
	assert.False(t, Compare("abc", OpLarger, "5"))
	assert.False(t, Compare("abc", OpSmaller, "5"))
	assert.False(t, Compare(nil, OpLarger, 1))
	assert.False(t, Compare(map[string]any{}, OpSmaller, 1))

	assert.True(t, Compare("10", OpLarger, 5))
	assert.True(t, Compare(3, OpSmaller, "4.5"))
}

func TestCompare_Operators(t *testing.T) {
	cases := []struct {
		value    any
		op       Operator
		expected any
		want     bool
	}{
		{"hello", OpEqual, "hello", true},
		{1, OpEqual, "1", true},
		{1.0, OpEqual, 1, true},
		{"a", OpNotEqual, "b", true},
		{"hello world", OpContains, "world", true},
		{[]any{"x", "y"}, OpContains, "y", true},
		{"hello", OpNotContains, "z", true},
		{"prefix-x", OpStartsWith, "prefix", true},
		{"x.json", OpEndsWith, ".json", true},
		{"", OpIsEmpty, nil, true},
		{[]any{}, OpIsEmpty, nil, true},
		{"  ", OpIsEmpty, nil, true},
		{0, OpIsEmpty, nil, false},
		{"v", OpIsNotEmpty, nil, true},
		{"abc123", OpRegex, `^[a-z]+\d+$`, true},
		{"abc", OpRegex, "(", false},
		{map[string]any{"a": 1}, OpStartsWith, "a", false},
		{"x", Operator("unknown"), "x", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Compare(c.value, c.op, c.expected), "%v %s %v", c.value, c.op, c.expected)
	}
}

func TestEvaluateConditions_Combine(t *testing.T) {
	data := map[string]any{"user": map[string]any{"age": 30, "name": "ana"}}
	conds := []Condition{
		{Field: "user.age", Operation: OpLarger, Value: 18},
		{Field: "user.name", Operation: OpEqual, Value: "bob"},
	}
	assert.False(t, EvaluateConditions(data, conds, CombineAll))
	assert.True(t, EvaluateConditions(data, conds, CombineAny))

	assert.True(t, EvaluateConditions(data, nil, CombineAll))
	assert.False(t, EvaluateConditions(data, nil, CombineAny))
}

func TestEvaluateConditions_MissingPathIsNil(t *testing.T) {
	data := map[string]any{"a": 1}
	assert.True(t, EvaluateConditions(data, []Condition{{Field: "x.y.z", Operation: OpIsEmpty}}, CombineAll))
	assert.False(t, EvaluateConditions(data, []Condition{{Field: "x.y.z", Operation: OpLarger, Value: 1}}, CombineAll))
}

func TestParseConditions(t *testing.T) {
	conds := ParseConditions(`{"conditions":[{"leftValue":"a","operator":"larger","rightValue":1},{"field":"b"},{"operation":"equal"}]}`)
	require.Len(t, conds, 2)
	assert.Equal(t, Condition{Field: "a", Operation: OpLarger, Value: float64(1)}, conds[0])
	assert.Equal(t, OpEqual, conds[1].Operation)

	assert.Empty(t, ParseConditions(nil))
	assert.Empty(t, ParseConditions("not json"))
}

func TestParseCombine(t *testing.T) {
	assert.Equal(t, CombineAny, ParseCombine("OR"))
	assert.Equal(t, CombineAny, ParseCombine(" any "))
	assert.Equal(t, CombineAll, ParseCombine(""))
	assert.Equal(t, CombineAll, ParseCombine("and"))
}
