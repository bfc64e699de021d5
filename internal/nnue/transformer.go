// Feature transformer: the input layer mapping active features to the
// accumulated hidden activations.

package nnue

import (
	"fmt"
	"io"

	"github.com/hezhaoyun/xqengine/internal/nnue/common"
	"github.com/hezhaoyun/xqengine/internal/nnue/features"
)

// FeatureTransformer converts active feature indices to accumulator
// values. Weights are stored column-major per feature so both the full
// computation and the incremental deltas are contiguous slice walks.
type FeatureTransformer struct {
	HalfDimensions  int
	InputDimensions int

	Biases      []int16
	Weights     []int16
	PSQTWeights []int32
}

// NewFeatureTransformer creates the transformer at the network's full size.
func NewFeatureTransformer() *FeatureTransformer {
	return newFeatureTransformer(TransformedFeatureDimensions, features.Dimensions)
}

func newFeatureTransformer(halfDims, inputDims int) *FeatureTransformer {
	return &FeatureTransformer{
		HalfDimensions:  halfDims,
		InputDimensions: inputDims,
		Biases:          make([]int16, halfDims),
		Weights:         make([]int16, halfDims*inputDims),
		PSQTWeights:     make([]int32, inputDims*PSQTBuckets),
	}
}

// GetHashValue returns the hash value for this transformer.
func (ft *FeatureTransformer) GetHashValue() uint32 {
	return features.HashValue ^ uint32(ft.HalfDimensions*2)
}

// ReadParameters reads transformer parameters from a stream. The on-disk
// layout is natural block order at nominal scale; after reading, the
// weights are permuted into packing order and rescaled for evaluation.
func (ft *FeatureTransformer) ReadParameters(r io.Reader) error {
	if err := common.ReadLEB128(r, ft.Biases); err != nil {
		return fmt.Errorf("failed to read biases: %w", err)
	}
	if err := common.ReadLEB128(r, ft.Weights); err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}
	if err := common.ReadLEB128(r, ft.PSQTWeights); err != nil {
		return fmt.Errorf("failed to read PSQT weights: %w", err)
	}

	permuteWeights(ft.Biases)
	for off := 0; off < len(ft.Weights); off += ft.HalfDimensions {
		permuteWeights(ft.Weights[off : off+ft.HalfDimensions])
	}
	ft.scaleWeights(true)

	return nil
}

// WriteParameters writes transformer parameters in on-disk order. The
// in-memory arrays stay in evaluation order; the inverse permutation and
// rescale are applied to copies.
func (ft *FeatureTransformer) WriteParameters(w io.Writer) error {
	biases := make([]int16, len(ft.Biases))
	copy(biases, ft.Biases)
	weights := make([]int16, len(ft.Weights))
	copy(weights, ft.Weights)

	for i := range biases {
		biases[i] /= 2
	}
	for i := range weights {
		weights[i] /= 2
	}
	permuteWeights(biases)
	for off := 0; off < len(weights); off += ft.HalfDimensions {
		permuteWeights(weights[off : off+ft.HalfDimensions])
	}

	if err := common.WriteLEB128(w, biases); err != nil {
		return fmt.Errorf("failed to write biases: %w", err)
	}
	if err := common.WriteLEB128(w, weights); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := common.WriteLEB128(w, ft.PSQTWeights); err != nil {
		return fmt.Errorf("failed to write PSQT weights: %w", err)
	}

	return nil
}

// permuteWeights reorders one accumulator-width vector into the order the
// narrowing pack instruction emits, so packed head input needs no shuffle.
// The block order table is self-inverse, so the same call restores
// natural order on the write path.
func permuteWeights(vec []int16) {
	permuteBlocks(vec, packBlockOrder)
}

// permuteBlocks applies a 64-bit block permutation to each group of eight
// blocks. One block is one lane of four int16.
func permuteBlocks(vec []int16, order [8]int) {
	const lane = 4
	group := lane * len(order)

	var tmp [32]int16
	for base := 0; base+group <= len(vec); base += group {
		copy(tmp[:group], vec[base:base+group])
		for b, src := range order {
			copy(vec[base+b*lane:base+(b+1)*lane], tmp[src*lane:src*lane+lane])
		}
	}
}

// packedLane maps a natural lane index to its position in permuted
// storage. With the identity block order this is the identity map.
func packedLane(j int) int {
	base := j &^ 31
	r := j & 31
	return base + packBlockOrder[r/4]*4 + r%4
}

// scaleWeights doubles the weights on read and halves them on write. The
// doubled scale lets the pairwise clipped product use a plain shift.
func (ft *FeatureTransformer) scaleWeights(read bool) {
	if read {
		for i := range ft.Weights {
			ft.Weights[i] *= 2
		}
		for i := range ft.Biases {
			ft.Biases[i] *= 2
		}
	} else {
		for i := range ft.Weights {
			ft.Weights[i] /= 2
		}
		for i := range ft.Biases {
			ft.Biases[i] /= 2
		}
	}
}

// Transform clips each accumulator lane, pairs lanes multiplicatively and
// packs the result into the head input. Returns the PSQT contribution for
// the requested bucket, side to move minus opponent, halved.
func (ft *FeatureTransformer) Transform(
	accumulation [2][]int16,
	psqtAccumulation [2][]int32,
	perspectives [2]int,
	bucket int,
	output []uint8,
) int32 {
	psqt := (psqtAccumulation[perspectives[0]][bucket] - psqtAccumulation[perspectives[1]][bucket]) / 2

	halfDims := ft.HalfDimensions
	maxVal := int16(127 * 2)
	for p := 0; p < 2; p++ {
		offset := (halfDims / 2) * p
		acc := accumulation[perspectives[p]]

		for j := 0; j < halfDims/2; j++ {
			lane := packedLane(j)
			sum0 := acc[lane]
			sum1 := acc[lane+halfDims/2]

			if sum0 < 0 {
				sum0 = 0
			} else if sum0 > maxVal {
				sum0 = maxVal
			}
			if sum1 < 0 {
				sum1 = 0
			} else if sum1 > maxVal {
				sum1 = maxVal
			}

			output[offset+j] = uint8((int(sum0) * int(sum1)) / 512)
		}
	}

	return psqt
}

// ComputeAccumulator fills one perspective's accumulator from scratch
// given its active feature indices.
func (ft *FeatureTransformer) ComputeAccumulator(
	activeIndices []int,
	accumulation []int16,
	psqtAccumulation []int32,
) {
	copy(accumulation, ft.Biases)
	for i := range psqtAccumulation {
		psqtAccumulation[i] = 0
	}

	for _, idx := range activeIndices {
		AddInt16(accumulation, ft.Weights[idx*ft.HalfDimensions:(idx+1)*ft.HalfDimensions])

		psqtOffset := idx * PSQTBuckets
		for b := 0; b < PSQTBuckets; b++ {
			psqtAccumulation[b] += ft.PSQTWeights[psqtOffset+b]
		}
	}
}

// UpdateAccumulator applies a feature delta in place. When the removed
// and added counts match, the common one-for-one and two-for-two cases
// run as a single fused pass over the accumulator instead of one pass
// per column.
func (ft *FeatureTransformer) UpdateAccumulator(
	removed, added []int,
	accumulation []int16,
	psqtAccumulation []int32,
) {
	halfDims := ft.HalfDimensions
	column := func(idx int) []int16 {
		return ft.Weights[idx*halfDims : (idx+1)*halfDims]
	}

	switch {
	case len(removed) == 1 && len(added) == 1:
		AddSubInt16(accumulation, column(added[0]), column(removed[0]))
	case len(removed) == 2 && len(added) == 2:
		Add2Sub2Int16(accumulation,
			column(added[0]), column(added[1]),
			column(removed[0]), column(removed[1]))
	default:
		for _, idx := range removed {
			SubInt16(accumulation, column(idx))
		}
		for _, idx := range added {
			AddInt16(accumulation, column(idx))
		}
	}

	for _, idx := range removed {
		psqtOffset := idx * PSQTBuckets
		for b := 0; b < PSQTBuckets; b++ {
			psqtAccumulation[b] -= ft.PSQTWeights[psqtOffset+b]
		}
	}
	for _, idx := range added {
		psqtOffset := idx * PSQTBuckets
		for b := 0; b < PSQTBuckets; b++ {
			psqtAccumulation[b] += ft.PSQTWeights[psqtOffset+b]
		}
	}
}
