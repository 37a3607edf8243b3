package nodekit

// DefaultMaxIterations is the loop safety ceiling
const DefaultMaxIterations = 100

const (
	LoopOutput = 0
	DoneOutput = 1
)

// LoopState is the per-adapter iteration bookkeeping of a Loop node.
// It is owned by one adapter instance and not safe for concurrent use.
type LoopState struct {
	Iteration     int
	Done          bool
	MaxIterations int
}

// NewLoopState returns a state with the given ceiling (DefaultMaxIterations when <= 0)
func NewLoopState(maxIterations int) *LoopState {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &LoopState{MaxIterations: maxIterations}
}

// Step advances the loop once. When iterations > 0 the loop finishes after
// that many passes; otherwise the caller's condition keeps it going.
// The result has two outputs (loop, done) and exactly one of them is non-empty.
func (s *LoopState) Step(items []Item, iterations int, condition bool) [][]Item {
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	limit := s.MaxIterations
	if iterations > 0 && iterations < limit {
		limit = iterations
	}

	s.Iteration++
	cont := s.Iteration < limit
	if iterations <= 0 {
		cont = condition && s.Iteration < s.MaxIterations
	}
	if s.Done {
		cont = false
	}

	payload := make([]Item, 0, len(items))
	for _, it := range items {
		next := it.Clone()
		next.JSON["_loopIteration"] = s.Iteration
		payload = append(payload, next)
	}
	if len(payload) == 0 {
		payload = append(payload, NewItem(map[string]any{"_loopIteration": s.Iteration}))
	}

	out := [][]Item{{}, {}}
	if cont {
		out[LoopOutput] = payload
	} else {
		s.Done = true
		out[DoneOutput] = payload
	}
	return out
}

// Reset clears the counter and completion flag
func (s *LoopState) Reset() {
	s.Iteration = 0
	s.Done = false
}
