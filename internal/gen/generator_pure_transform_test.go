package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
)

func TestPureTransform_Defaults(t *testing.T) {
	tests := []struct {
		node    string
		spec    string
		outputs []string
		mapping string
	}{
		{"merge", "merge", []string{"output"}, "N:M"},
		{"if", "if", []string{"true", "false"}, "route"},
		{"switch", "switch", []string{"output0", "output1", "output2", "output3"}, "route"},
		{"filter", "filter", []string{"kept"}, "filter"},
		{"set", "set", []string{"output"}, "1:1"},
		{"n8n-nodes-base.itemLists", "iterator", []string{"output"}, "1:N"},
		{"noOp", "passthrough", []string{"output"}, "1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			res := Route(ClassPureTransform, contract.Context{NodeName: tt.node})
			assert.Equal(t, tt.spec, res.Specialization())
			assert.Equal(t, tt.outputs, res.Extras["output_names"])
			assert.Equal(t, tt.mapping, res.Extras["item_mapping"])
			assert.Empty(t, res.ConversionNotes)
			assert.NotContains(t, res.Imports, "fmt")
		})
	}
}

func TestPureTransform_UnknownIsPassthrough(t *testing.T) {
	res := Route(ClassPureTransform, contract.Context{NodeName: "dateTime"})
	assert.Equal(t, "passthrough", res.Specialization())
	assert.Contains(t, res.ConversionNotes, `no transform known for "dateTime"; emitting a passthrough`)
	assert.Contains(t, res.Code, "it.Clone()")
}

func TestPureTransform_OutputNamesFromContract(t *testing.T) {
	res := Route(ClassPureTransform, contract.Context{
		NodeName: "switch",
		Contract: contract.ExecutionContract{IOCardinality: contract.IOCardinality{OutputNames: []string{"a", "b"}}},
	})
	assert.Equal(t, []string{"a", "b"}, res.Extras["output_names"])
	assert.Contains(t, res.Code, "nodekit.RouteItems(n.GetInputData(), rules, 2, fallback)")
	assert.Contains(t, res.Helpers, "make([][]nodekit.Item, 2)")
}

func TestPureTransform_IfAlwaysHasTwoOutputs(t *testing.T) {
	res := Route(ClassPureTransform, contract.Context{
		NodeName: "if",
		Contract: contract.ExecutionContract{IOCardinality: contract.IOCardinality{OutputNames: []string{"only"}}},
	})
	assert.Equal(t, []string{"true", "false"}, res.Extras["output_names"])
	assert.Contains(t, res.ConversionNotes, "if nodes have a true and a false output, not 1")
	assert.Contains(t, res.Helpers, "make([][]nodekit.Item, 2)")
}

func TestPureTransform_TransformConfig(t *testing.T) {
	res := Route(ClassPureTransform, contract.Context{
		NodeName: "merge",
		Contract: contract.ExecutionContract{
			IOCardinality:   contract.IOCardinality{ItemMapping: contract.Mapping1To1},
			TransformConfig: map[string]any{"mode": "mergeByKey", "join_mode": "left", "match_key": "id"},
		},
	})
	assert.Equal(t, "1:1", res.Extras["item_mapping"])
	assert.Contains(t, res.Code, `n.StringParam("mode", 0, "mergeByKey")`)
	assert.Contains(t, res.Code, `n.StringParam("joinMode", 0, "left")`)
	assert.Contains(t, res.Code, `n.StringParam("matchKey", 0, "id")`)

	sw := Route(ClassPureTransform, contract.Context{
		NodeName: "switch",
		Contract: contract.ExecutionContract{TransformConfig: map[string]any{"fallback_output": 3.0}},
	})
	assert.Contains(t, sw.Code, `n.IntParam("fallbackOutput", 0, 3)`)

	plain := Route(ClassPureTransform, contract.Context{NodeName: "switch"})
	assert.Contains(t, plain.Code, `n.IntParam("fallbackOutput", 0, -1)`)
}

func TestPureTransform_SetImportsStrings(t *testing.T) {
	assert.Contains(t, Route(ClassPureTransform, contract.Context{NodeName: "set"}).Imports, "strings")
	assert.Contains(t, Route(ClassPureTransform, contract.Context{NodeName: "editFields"}).Imports, "strings")
	assert.NotContains(t, Route(ClassPureTransform, contract.Context{NodeName: "filter"}).Imports, "strings")
}
