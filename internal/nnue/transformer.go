package nnue

import "github.com/hailam/shoginnue/internal/nnue/features"

// FeatureTransformer converts input features to hidden layer values.
type FeatureTransformer struct {
	HalfDimensions  int
	InputDimensions int

	// Biases for the accumulator (int16)
	Biases []int16

	// Weights laid out feature-major: [InputDimensions][HalfDimensions]
	Weights []int16
}

// NewFeatureTransformer creates a zeroed transformer over HalfKP features.
func NewFeatureTransformer(halfDims int) *FeatureTransformer {
	return &FeatureTransformer{
		HalfDimensions:  halfDims,
		InputDimensions: features.Dimensions,
		Biases:          make([]int16, halfDims),
		Weights:         make([]int16, halfDims*features.Dimensions),
	}
}

// HashValue returns the hash value for this transformer.
func (ft *FeatureTransformer) HashValue(fs features.HalfKP) uint32 {
	return fs.HashValue() ^ uint32(ft.HalfDimensions*2)
}

// column returns the weights of one input feature.
func (ft *FeatureTransformer) column(idx int) []int16 {
	offset := idx * ft.HalfDimensions
	return ft.Weights[offset : offset+ft.HalfDimensions]
}

// ComputeAccumulator computes the full accumulator from scratch.
func (ft *FeatureTransformer) ComputeAccumulator(activeIndices []int, accumulation []int16) {
	// Start with biases
	copy(accumulation, ft.Biases)

	for _, idx := range activeIndices {
		addInt16(accumulation, ft.column(idx))
	}
}

// UpdateAccumulator incrementally updates the accumulator (in-place).
func (ft *FeatureTransformer) UpdateAccumulator(removedIndices, addedIndices []int, accumulation []int16) {
	for _, idx := range removedIndices {
		subInt16(accumulation, ft.column(idx))
	}
	for _, idx := range addedIndices {
		addInt16(accumulation, ft.column(idx))
	}
}

// addInt16 adds weights to accumulator.
// dst[i] += src[i] for all i in range
func addInt16(dst, src []int16) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// subInt16 subtracts weights from accumulator.
// dst[i] -= src[i] for all i in range
func subInt16(dst, src []int16) {
	for i := range dst {
		dst[i] -= src[i]
	}
}
