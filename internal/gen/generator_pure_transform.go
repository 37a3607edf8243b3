package gen

import (
	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

// PureTransformGenerator converts item-shaping nodes. The emitted adapters
// call the pure helpers of nodekit and do no I/O.
type PureTransformGenerator struct{}

func (g *PureTransformGenerator) Class() SemanticClass {
	return ClassPureTransform
}

type transformData struct {
	nodeData
	Specialization string
	Outputs        int
	MergeMode      string
	JoinMode       string
	MatchKey       string
	Combine        string
	Fallback       int
}

func (g *PureTransformGenerator) Generate(node contract.Context) *Result {
	ctx := NewGeneratorContext(ClassPureTransform, node)

	cfg, known := TransformConfigs[ctx.Key]
	if !known {
		ctx.Note("no transform known for %q; emitting a passthrough", node.NodeName)
		cfg = TransformConfig{Specialization: "passthrough", Outputs: []string{"output"}, ItemMapping: string(contract.Mapping1To1)}
	}
	outputs := cfg.Outputs
	if names := node.Contract.IOCardinality.OutputNames; len(names) > 0 {
		outputs = names
	}
	mapping := cfg.ItemMapping
	if m := node.Contract.IOCardinality.ItemMapping; m != "" {
		mapping = string(m)
	}

	tc := node.Contract
	data := transformData{
		nodeData:       ctx.data(""),
		Specialization: cfg.Specialization,
		Outputs:        len(outputs),
		MergeMode:      tc.TransformString("mode", string(nodekit.ParseMergeMode(node.DefaultString("mode")))),
		JoinMode:       tc.TransformString("join_mode", string(nodekit.JoinInner)),
		MatchKey:       tc.TransformString("match_key", node.DefaultString("propertyName1")),
		Combine:        tc.TransformString("combine", string(nodekit.CombineAll)),
		Fallback:       intOr(tc.TransformConfig["fallback_output"], -1),
	}

	switch cfg.Specialization {
	case "merge":
		ctx.EmitCode("transform_merge", data)
	case "if":
		if data.Outputs != 2 {
			ctx.Note("if nodes have a true and a false output, not %d", data.Outputs)
			data.Outputs, outputs = 2, []string{"true", "false"}
		}
		ctx.EmitCode("transform_if", data)
	case "switch":
		ctx.EmitCode("transform_switch", data)
	case "filter":
		ctx.EmitCode("transform_filter", data)
	case "set":
		ctx.AddImport("strings")
		ctx.EmitCode("transform_set", data)
	case "iterator":
		ctx.EmitCode("transform_iterator", data)
	default:
		ctx.EmitCode("transform_passthrough", data)
	}
	ctx.EmitHelper("transform_items", data)

	ctx.SetExtra("specialization", cfg.Specialization)
	ctx.SetExtra("output_names", outputs)
	ctx.SetExtra("item_mapping", mapping)
	return ctx.Result()
}

// intOr reads a whole number from a loosely typed value
func intOr(v any, def int) int {
	if f, ok := nodekit.ToFloat(v); ok {
		return int(f)
	}
	return def
}
