// Package nnue implements NNUE (Efficiently Updatable Neural Network) evaluation
// over HalfKP shogi features.
package nnue

import (
	"fmt"

	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/shogi"
)

// Network architecture constants
const (
	// Input features per perspective
	InputDimensions = features.Dimensions // 125388

	// Default hidden layer width per perspective
	DefaultHalfDimensions = 256

	L2Size     = 32 // Second hidden layer
	OutputSize = 1  // Single output value

	// Quantization constants
	L1QuantShift = 6   // L1 output scaled by 2^6
	L2QuantShift = 6   // L2 output scaled by 2^6
	OutputScale  = 600 // Final scale to centipawns
)

// ClampedReLU clamps value to [0, 127] for quantized inference.
func ClampedReLU(x int16) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Evaluator is the main NNUE evaluator interface.
type Evaluator struct {
	features features.HalfKP
	net      *Network
	stack    *AccumulatorStack

	// scratch lists for the warm path
	removed, added features.IndexList
}

// NewEvaluator creates an evaluator with deterministic random weights.
// Weight files are not supported; halfDims selects the hidden width.
func NewEvaluator(fs features.HalfKP, halfDims int, seed int64) (*Evaluator, error) {
	if halfDims <= 0 || halfDims%2 != 0 {
		return nil, fmt.Errorf("invalid hidden width %d: must be positive and even", halfDims)
	}

	net := NewNetwork(halfDims)
	net.InitRandom(seed)

	return NewEvaluatorFromNetwork(fs, net), nil
}

// NewEvaluatorFromNetwork creates an evaluator sharing net. The network is
// only read, so one network may back evaluators on many goroutines.
func NewEvaluatorFromNetwork(fs features.HalfKP, net *Network) *Evaluator {
	return &Evaluator{
		features: fs,
		net:      net,
		stack:    NewAccumulatorStack(net.HalfDimensions),
	}
}

// Network returns the evaluator's weights.
func (e *Evaluator) Network() *Network {
	return e.net
}

// Features returns the feature set the evaluator is keyed by.
func (e *Evaluator) Features() features.HalfKP {
	return e.features
}

// Evaluate returns NNUE evaluation for the position.
// Returns score in centipawns from side to move's perspective.
func (e *Evaluator) Evaluate(pos *shogi.Position) int {
	acc := e.stack.Current()
	for _, persp := range [...]shogi.Color{shogi.Sente, shogi.Gote} {
		if !acc.Computed[persp] {
			e.refreshPerspective(pos, acc, persp)
		}
	}
	return e.net.Forward(acc, pos.SideToMove)
}

// Push saves accumulator state (call before MakeMove).
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop restores accumulator state (call after UnmakeMove).
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Refresh forces a full recomputation of the accumulator.
func (e *Evaluator) Refresh(pos *shogi.Position) {
	acc := e.stack.Current()
	e.refreshPerspective(pos, acc, shogi.Sente)
	e.refreshPerspective(pos, acc, shogi.Gote)
}

// Update updates the accumulator for the move recorded in pos.Dirty.
// Should be called after Push and MakeMove. It reports, per perspective,
// whether a full refresh was needed.
func (e *Evaluator) Update(pos *shogi.Position) (refreshed [shogi.ColorNB]bool) {
	acc := e.stack.Current()
	for _, persp := range [...]shogi.Color{shogi.Sente, shogi.Gote} {
		// King moves require full recomputation (anchor square changed)
		if !acc.Computed[persp] || e.features.RequiresRefresh(&pos.Dirty, persp) {
			e.refreshPerspective(pos, acc, persp)
			refreshed[persp] = true
			continue
		}

		e.removed.Clear()
		e.added.Clear()
		e.features.AppendChangedIndices(pos, &pos.Dirty, persp, &e.removed, &e.added)
		e.net.Transformer.UpdateAccumulator(e.removed.Slice(), e.added.Slice(), acc.Accumulation[persp])
	}
	return refreshed
}

// Accumulation returns the current hidden-layer sums for perspective.
func (e *Evaluator) Accumulation(persp shogi.Color) []int16 {
	return e.stack.Current().Accumulation[persp]
}

// Reset resets the accumulator stack (for new game).
func (e *Evaluator) Reset() {
	e.stack.Reset()
}

func (e *Evaluator) refreshPerspective(pos *shogi.Position, acc *Accumulator, persp shogi.Color) {
	var active features.IndexList
	e.features.AppendActiveIndices(pos, persp, &active)
	e.net.Transformer.ComputeAccumulator(active.Slice(), acc.Accumulation[persp])
	acc.Computed[persp] = true
}
