// Affine layer specialized for sparse input. Used directly after the
// feature transformer, where most of the clipped activations are zero.

package layers

import (
	"fmt"
	"io"

	"github.com/hezhaoyun/xqengine/internal/nnue/common"
)

// AffineTransformSparseInput is a fully connected layer that skips zero
// input chunks during propagation. Weight storage and serialization are
// identical to AffineTransform.
type AffineTransformSparseInput struct {
	InputDimensions       int
	OutputDimensions      int
	PaddedInputDimensions int

	Biases  []int32
	Weights []int8
}

// NewAffineTransformSparseInput creates a sparse-input affine layer.
func NewAffineTransformSparseInput(inputDims, outputDims int) *AffineTransformSparseInput {
	paddedInput := common.CeilToMultiple(inputDims, common.MaxSimdWidth)

	return &AffineTransformSparseInput{
		InputDimensions:       inputDims,
		OutputDimensions:      outputDims,
		PaddedInputDimensions: paddedInput,
		Biases:                make([]int32, outputDims),
		Weights:               make([]int8, outputDims*paddedInput),
	}
}

// GetHashValue returns the hash for this layer, identical to the dense
// affine layer.
func (a *AffineTransformSparseInput) GetHashValue(prevHash uint32) uint32 {
	return AffineTransformHashValue(prevHash, a.OutputDimensions)
}

func (a *AffineTransformSparseInput) getWeightIndex(i int) int {
	const chunkSize = 4
	return (i/chunkSize)%(a.PaddedInputDimensions/chunkSize)*a.OutputDimensions*chunkSize +
		i/a.PaddedInputDimensions*chunkSize + i%chunkSize
}

// ReadParameters reads layer parameters from a stream.
func (a *AffineTransformSparseInput) ReadParameters(r io.Reader) error {
	if err := common.ReadLittleEndianSlice(r, a.Biases); err != nil {
		return fmt.Errorf("failed to read biases: %w", err)
	}

	weightData := make([]int8, a.OutputDimensions*a.PaddedInputDimensions)
	if err := common.ReadLittleEndianSlice(r, weightData); err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}

	for i, w := range weightData {
		a.Weights[a.getWeightIndex(i)] = w
	}

	return nil
}

// WriteParameters writes layer parameters in on-disk order.
func (a *AffineTransformSparseInput) WriteParameters(w io.Writer) error {
	if err := common.WriteLittleEndianSlice(w, a.Biases); err != nil {
		return fmt.Errorf("failed to write biases: %w", err)
	}

	weightData := make([]int8, a.OutputDimensions*a.PaddedInputDimensions)
	for i := range weightData {
		weightData[i] = a.Weights[a.getWeightIndex(i)]
	}

	if err := common.WriteLittleEndianSlice(w, weightData); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}

	return nil
}

// Propagate performs the forward pass, visiting only non-zero chunks of
// four input bytes.
func (a *AffineTransformSparseInput) Propagate(input []uint8, output []int32) {
	const chunkSize = 4

	copy(output[:a.OutputDimensions], a.Biases)

	for in := 0; in+chunkSize <= a.InputDimensions; in += chunkSize {
		b0 := int32(input[in])
		b1 := int32(input[in+1])
		b2 := int32(input[in+2])
		b3 := int32(input[in+3])
		if b0|b1|b2|b3 == 0 {
			continue
		}

		colOffset := (in / chunkSize) * a.OutputDimensions * chunkSize
		SparseChunkMulAcc(output, a.Weights[colOffset:], a.OutputDimensions, b0, b1, b2, b3)
	}
}
