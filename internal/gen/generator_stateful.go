package gen

import (
	"strconv"

	"github.com/manarouei/agent-skills-sub004/internal/contract"
	"github.com/manarouei/agent-skills-sub004/pkg/nodekit"
)

// StatefulGenerator converts control-flow and memory nodes. State lives in
// fields of the adapter instance; nothing is locked because one instance is
// never executed concurrently.
type StatefulGenerator struct{}

func (g *StatefulGenerator) Class() SemanticClass {
	return ClassStateful
}

type statefulData struct {
	nodeData
	Specialization string
	Outputs        int
	MaxIterations  int
	BatchSize      int
	Window         int
	TTLSeconds     int
}

func (g *StatefulGenerator) Generate(node contract.Context) *Result {
	ctx := NewGeneratorContext(ClassStateful, node)

	cfg, known := StatefulConfigs[ctx.Key]
	if !known {
		ctx.Note("no stateful primitive known for %q; emitting a passthrough", node.NodeName)
		cfg = StatefulConfig{Specialization: "generic", Outputs: []string{"output"}}
	}
	outputs := cfg.Outputs
	if names := node.Contract.IOCardinality.OutputNames; len(names) > 0 {
		outputs = names
	}
	state := contract.ExecutionContract{State: cfg.State}.Merge(contract.ExecutionContract{State: node.Contract.State})

	credType := node.Contract.Credentials.Type
	if credType == "" && cfg.Specialization == "redis_memory" {
		credType = "redis"
	}
	data := statefulData{
		nodeData:       ctx.data(credType),
		Specialization: cfg.Specialization,
		Outputs:        len(outputs),
		MaxIterations:  state.StateInt("max_iterations", nodekit.DefaultMaxIterations),
		BatchSize:      state.StateInt("batch_size", nodekit.DefaultBatchSize),
		Window:         state.StateInt("window", nodekit.DefaultMemoryWindow),
		TTLSeconds:     state.StateInt("ttl_seconds", int(nodekit.DefaultMemoryTTL.Seconds())),
	}

	switch cfg.Specialization {
	case "wait":
		if s := state.StateInt("max_wait_seconds", 0); s > 0 && s != int(nodekit.MaxWait.Seconds()) {
			ctx.Note("requested wait cap of %ds ignored; waits are capped at %s", s, nodekit.MaxWait)
		}
		ctx.AddField("sleep", "nodekit.Sleeper", "nodekit.ContextSleep")
		ctx.EmitCode("stateful_wait", data)
	case "loop":
		if data.Outputs != 2 {
			ctx.Note("loop nodes have a loop and a done output, not %d", data.Outputs)
			data.Outputs, outputs = 2, []string{"loop", "done"}
		}
		ctx.AddField("loop", "*nodekit.LoopState", "nodekit.NewLoopState("+strconv.Itoa(data.MaxIterations)+")")
		ctx.EmitCode("stateful_loop", data)
	case "splitinbatches":
		ctx.AddField("batches", "*nodekit.BatchState", "nodekit.NewBatchState("+strconv.Itoa(data.BatchSize)+")")
		ctx.EmitCode("stateful_batches", data)
	case "subworkflow":
		ctx.EmitCode("stateful_subworkflow", data)
	case "buffer_memory":
		if data.Window != nodekit.DefaultMemoryWindow {
			ctx.AddField("memory", "nodekit.ChatMemory", "nodekit.NewBufferMemory("+strconv.Itoa(data.Window)+")")
			ctx.Note("window %d differs from the shared buffer; history is kept per adapter instance", data.Window)
		} else {
			ctx.AddField("memory", "nodekit.ChatMemory", "nodekit.SharedBufferMemory()")
		}
		ctx.AddImport("fmt")
		ctx.EmitCode("stateful_buffer_memory", data)
		ctx.EmitHelper("stateful_memory_operation", data)
	case "redis_memory":
		ctx.AddImport("fmt", "time")
		ctx.EmitCode("stateful_redis_memory", data)
		ctx.EmitHelper("stateful_memory_operation", data)
	default:
		ctx.EmitCode("stateful_passthrough", data)
	}

	ctx.SetExtra("specialization", cfg.Specialization)
	ctx.SetExtra("output_names", outputs)
	ctx.SetExtra("state", state.State)
	return ctx.Result()
}
