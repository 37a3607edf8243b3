package nodekit

const (
	BatchOutput     = 0
	BatchDoneOutput = 1
)

// DefaultBatchSize is used when a SplitInBatches node declares no size
const DefaultBatchSize = 10

// BatchState partitions a materialised item list into fixed-size batches
// and remembers which batch comes next.
type BatchState struct {
	BatchSize    int
	CurrentBatch int
	TotalBatches int

	items   []Item
	started bool
}

// NewBatchState returns a state emitting batches of size (DefaultBatchSize when <= 0)
func NewBatchState(size int) *BatchState {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchState{BatchSize: size}
}

// Next emits the next batch. The first call (and the first call after the
// final batch) captures items. Intermediate batches go to BatchOutput only;
// the final batch goes to both outputs.
func (s *BatchState) Next(items []Item) [][]Item {
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if !s.started {
		s.items = make([]Item, len(items))
		copy(s.items, items)
		s.CurrentBatch = 0
		s.TotalBatches = (len(s.items) + s.BatchSize - 1) / s.BatchSize
		s.started = true
	}

	out := [][]Item{{}, {}}
	if s.TotalBatches == 0 {
		s.started = false
		return out
	}

	start := s.CurrentBatch * s.BatchSize
	end := start + s.BatchSize
	if end > len(s.items) {
		end = len(s.items)
	}
	batch := make([]Item, 0, end-start)
	for _, it := range s.items[start:end] {
		batch = append(batch, it.Clone())
	}
	s.CurrentBatch++

	out[BatchOutput] = batch
	if s.CurrentBatch >= s.TotalBatches {
		done := make([]Item, 0, len(batch))
		for _, it := range batch {
			done = append(done, it.Clone())
		}
		out[BatchDoneOutput] = done
		s.started = false
		s.items = nil
	}
	return out
}

// Remaining reports how many batches are still to be emitted
func (s *BatchState) Remaining() int {
	if !s.started {
		return 0
	}
	return s.TotalBatches - s.CurrentBatch
}
