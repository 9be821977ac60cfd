package nnue

import "github.com/hailam/shoginnue/internal/shogi"

// Network holds the NNUE weights.
type Network struct {
	HalfDimensions int

	// Layer 1: InputDimensions -> HalfDimensions (per perspective)
	Transformer *FeatureTransformer

	// Layer 2: HalfDimensions*2 (both perspectives) -> L2Size
	L2Weights [][L2Size]int8
	L2Bias    [L2Size]int32

	// Output layer: L2Size -> 1
	OutputWeights [L2Size]int8
	OutputBias    int32
}

// NewNetwork creates a network with zero weights (init random before use).
func NewNetwork(halfDims int) *Network {
	return &Network{
		HalfDimensions: halfDims,
		Transformer:    NewFeatureTransformer(halfDims),
		L2Weights:      make([][L2Size]int8, halfDims*2),
	}
}

// Forward computes the network output given an accumulator.
// Returns evaluation in centipawns from the perspective of the side to move.
func (n *Network) Forward(acc *Accumulator, sideToMove shogi.Color) int {
	// Side to move comes first
	stmAcc := acc.Accumulation[sideToMove]
	nstmAcc := acc.Accumulation[sideToMove.Other()]
	half := n.HalfDimensions

	// Layer 1 output: apply clipped ReLU to accumulated values
	l1Out := make([]int8, half*2)
	for i := 0; i < half; i++ {
		l1Out[i] = ClampedReLU(stmAcc[i])
		l1Out[half+i] = ClampedReLU(nstmAcc[i])
	}

	// Layer 2: matrix multiply + bias + clipped ReLU
	var l2Out [L2Size]int8
	for i := 0; i < L2Size; i++ {
		sum := n.L2Bias[i]
		for j := 0; j < half*2; j++ {
			sum += int32(l1Out[j]) * int32(n.L2Weights[j][i])
		}
		l2Out[i] = ClampedReLU(int16(sum >> L1QuantShift))
	}

	// Output layer
	output := n.OutputBias
	for i := 0; i < L2Size; i++ {
		output += int32(l2Out[i]) * int32(n.OutputWeights[i])
	}

	// Scale to centipawns
	return int(output * OutputScale >> (L2QuantShift + 8))
}

// InitRandom initializes weights with small random values (for testing only).
func (n *Network) InitRandom(seed int64) {
	// Use a simple LCG for reproducibility
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128 // Small random values -128 to 127
	}

	ft := n.Transformer
	for i := range ft.Weights {
		ft.Weights[i] = next() >> 5 // Very small: -4 to 3
	}
	for i := range ft.Biases {
		ft.Biases[i] = next() >> 3 // Small: -16 to 15
	}

	for i := range n.L2Weights {
		for j := 0; j < L2Size; j++ {
			n.L2Weights[i][j] = int8(next() >> 6)
		}
	}
	for i := 0; i < L2Size; i++ {
		n.L2Bias[i] = int32(next())
	}

	for i := 0; i < L2Size; i++ {
		n.OutputWeights[i] = int8(next() >> 6)
	}
	n.OutputBias = int32(next()) * 100 // Centered around zero
}
