// AffineTransform (fully connected) layer.

package layers

import (
	"fmt"
	"io"

	"github.com/hezhaoyun/xqengine/internal/nnue/common"
)

// AffineTransformHashValue returns the hash value for an affine layer.
func AffineTransformHashValue(prevHash uint32, outputDims int) uint32 {
	hashValue := uint32(0xCC03DAE4)
	hashValue += uint32(outputDims)
	hashValue ^= prevHash >> 1
	hashValue ^= prevHash << 31
	return hashValue
}

// AffineTransform is a fully connected layer: output = weights*input + bias.
type AffineTransform struct {
	InputDimensions       int
	OutputDimensions      int
	PaddedInputDimensions int

	Biases  []int32
	Weights []int8
}

// NewAffineTransform creates an affine layer with the input padded to the
// vector register width.
func NewAffineTransform(inputDims, outputDims int) *AffineTransform {
	paddedInput := common.CeilToMultiple(inputDims, common.MaxSimdWidth)

	return &AffineTransform{
		InputDimensions:       inputDims,
		OutputDimensions:      outputDims,
		PaddedInputDimensions: paddedInput,
		Biases:                make([]int32, outputDims),
		Weights:               make([]int8, outputDims*paddedInput),
	}
}

// GetHashValue returns the hash for this layer.
func (a *AffineTransform) GetHashValue(prevHash uint32) uint32 {
	return AffineTransformHashValue(prevHash, a.OutputDimensions)
}

// getWeightIndex returns the scrambled weight index used for chunked
// vector processing. Weights are stored in chunks of four input columns.
func (a *AffineTransform) getWeightIndex(i int) int {
	const chunkSize = 4
	return (i/chunkSize)%(a.PaddedInputDimensions/chunkSize)*a.OutputDimensions*chunkSize +
		i/a.PaddedInputDimensions*chunkSize + i%chunkSize
}

// ReadParameters reads layer parameters from a stream.
func (a *AffineTransform) ReadParameters(r io.Reader) error {
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

// WriteParameters writes layer parameters, descrambling the weights back
// into their on-disk row-major order.
func (a *AffineTransform) WriteParameters(w io.Writer) error {
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

// Propagate performs the forward pass. The scrambled storage groups the
// weights of four input columns per output, so accumulation walks the
// input in chunks of four.
func (a *AffineTransform) Propagate(input []uint8, output []int32) {
	const chunkSize = 4
	numChunks := a.PaddedInputDimensions / chunkSize

	copy(output[:a.OutputDimensions], a.Biases)

	for c := 0; c < numChunks; c++ {
		in := c * chunkSize
		if in >= a.InputDimensions {
			break
		}
		b0 := int32(input[in])
		var b1, b2, b3 int32
		if in+1 < a.InputDimensions {
			b1 = int32(input[in+1])
		}
		if in+2 < a.InputDimensions {
			b2 = int32(input[in+2])
		}
		if in+3 < a.InputDimensions {
			b3 = int32(input[in+3])
		}
		colOffset := c * a.OutputDimensions * chunkSize
		SparseChunkMulAcc(output, a.Weights[colOffset:], a.OutputDimensions, b0, b1, b2, b3)
	}
}
