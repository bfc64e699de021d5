// Squared clipped ReLU activation layer.

package layers

// SqrClippedReLUHashValue returns the hash value, shared with ClippedReLU.
func SqrClippedReLUHashValue(prevHash uint32) uint32 {
	return 0x538D24C7 + prevHash
}

// SqrClippedReLU applies min(127, x*x >> (2*WeightScaleBits + 7)).
type SqrClippedReLU struct {
	InputDimensions  int
	OutputDimensions int
}

// NewSqrClippedReLU creates a squared clipped ReLU layer.
func NewSqrClippedReLU(dims int) *SqrClippedReLU {
	return &SqrClippedReLU{
		InputDimensions:  dims,
		OutputDimensions: dims,
	}
}

// GetHashValue returns the hash for this layer.
func (s *SqrClippedReLU) GetHashValue(prevHash uint32) uint32 {
	return SqrClippedReLUHashValue(prevHash)
}

// Propagate applies the activation. Input int32, output uint8.
func (s *SqrClippedReLU) Propagate(input []int32, output []uint8) {
	const shift = 2*WeightScaleBits + 7

	for i := 0; i < s.InputDimensions; i++ {
		val := int64(input[i]) * int64(input[i])
		result := val >> shift
		if result > 127 {
			result = 127
		}
		output[i] = uint8(result)
	}
}
