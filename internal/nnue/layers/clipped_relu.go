// ClippedReLU activation layer.

package layers

// WeightScaleBits is the fixed-point shift applied by the activations.
const WeightScaleBits = 6

// ClippedReLUHashValue returns the hash value for a clipped ReLU layer.
func ClippedReLUHashValue(prevHash uint32) uint32 {
	return 0x538D24C7 + prevHash
}

// ClippedReLU applies clamp(x >> WeightScaleBits, 0, 127).
type ClippedReLU struct {
	InputDimensions  int
	OutputDimensions int
}

// NewClippedReLU creates a clipped ReLU layer.
func NewClippedReLU(dims int) *ClippedReLU {
	return &ClippedReLU{
		InputDimensions:  dims,
		OutputDimensions: dims,
	}
}

// GetHashValue returns the hash for this layer.
func (c *ClippedReLU) GetHashValue(prevHash uint32) uint32 {
	return ClippedReLUHashValue(prevHash)
}

// Propagate applies the activation. Input int32, output uint8.
func (c *ClippedReLU) Propagate(input []int32, output []uint8) {
	for i := 0; i < c.InputDimensions; i++ {
		val := input[i] >> WeightScaleBits
		if val < 0 {
			val = 0
		} else if val > 127 {
			val = 127
		}
		output[i] = uint8(val)
	}
}
