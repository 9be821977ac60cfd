package nnue

// Accumulator stores the accumulated hidden layer values for incremental updates.
// Each side has its own accumulator from its perspective.
type Accumulator struct {
	// Hidden layer values per perspective [Color][HalfDimensions]
	// Stored as int16 for quantized arithmetic
	Accumulation [2][]int16

	// Track if each perspective is computed
	Computed [2]bool
}

// NewAccumulator creates an accumulator with the given half dimensions.
func NewAccumulator(halfDims int) *Accumulator {
	return &Accumulator{
		Accumulation: [2][]int16{
			make([]int16, halfDims),
			make([]int16, halfDims),
		},
	}
}

// Copy copies values from another accumulator.
func (a *Accumulator) Copy(other *Accumulator) {
	copy(a.Accumulation[0], other.Accumulation[0])
	copy(a.Accumulation[1], other.Accumulation[1])
	a.Computed = other.Computed
}

// MaxStackSize is the maximum ply depth
const MaxStackSize = 512

// AccumulatorStack manages accumulators during search.
type AccumulatorStack struct {
	stack []Accumulator // One per ply
	top   int
}

// NewAccumulatorStack creates a new accumulator stack.
func NewAccumulatorStack(halfDims int) *AccumulatorStack {
	s := &AccumulatorStack{stack: make([]Accumulator, MaxStackSize)}
	for i := range s.stack {
		s.stack[i] = *NewAccumulator(halfDims)
	}
	return s
}

// Push saves current accumulator state.
func (s *AccumulatorStack) Push() {
	if s.top < MaxStackSize-1 {
		s.stack[s.top+1].Copy(&s.stack[s.top])
		s.top++
	}
}

// Pop restores previous accumulator state.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Current returns the current accumulator.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Depth returns the number of pushed states.
func (s *AccumulatorStack) Depth() int {
	return s.top
}

// Reset resets the stack to initial state.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = [2]bool{}
}
