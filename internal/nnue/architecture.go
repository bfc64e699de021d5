// Evaluation head architecture: the small feed-forward network applied
// to the packed transformer output.

package nnue

import (
	"io"

	"github.com/hezhaoyun/xqengine/internal/nnue/common"
	"github.com/hezhaoyun/xqengine/internal/nnue/layers"
)

// Network dimensions.
const (
	TransformedFeatureDimensions = 512
	L2                           = 15
	L3                           = 32

	PSQTBuckets = 8
	LayerStacks = 8
)

// Constants used in evaluation value calculation.
const (
	OutputScale     = 16
	WeightScaleBits = 6
)

// ForwardBuffers holds pre-allocated buffers for the forward pass, sized
// to the padded layer widths.
type ForwardBuffers struct {
	FC0Out    [32]int32
	AcSqr0Out [64]uint8 // holds the sqr half and the plain half
	Ac0Out    [32]uint8
	FC1Out    [32]int32
	Ac1Out    [32]uint8
	FC2Out    [32]int32
}

// HeadArchitecture is one layer stack of the evaluation head.
type HeadArchitecture struct {
	TransformedFeatureDimensions int
	FC0Outputs                   int // L2 + 1
	FC1Outputs                   int // L3

	FC0    *layers.AffineTransformSparseInput
	AcSqr0 *layers.SqrClippedReLU
	Ac0    *layers.ClippedReLU
	FC1    *layers.AffineTransform
	Ac1    *layers.ClippedReLU
	FC2    *layers.AffineTransform

	buffers ForwardBuffers
}

// NewHeadArchitecture creates one layer stack at the network's full size.
func NewHeadArchitecture() *HeadArchitecture {
	return newHeadArchitecture(TransformedFeatureDimensions)
}

func newHeadArchitecture(featureDims int) *HeadArchitecture {
	fc0Out := L2 + 1 // 16
	return &HeadArchitecture{
		TransformedFeatureDimensions: featureDims,
		FC0Outputs:                   fc0Out,
		FC1Outputs:                   L3,
		FC0:    layers.NewAffineTransformSparseInput(featureDims, fc0Out),
		AcSqr0: layers.NewSqrClippedReLU(fc0Out),
		Ac0:    layers.NewClippedReLU(fc0Out),
		FC1:    layers.NewAffineTransform(fc0Out*2, L3),
		Ac1:    layers.NewClippedReLU(L3),
		FC2:    layers.NewAffineTransform(L3, 1),
	}
}

// GetHashValue chains the layer hashes from the input slice hash.
func (n *HeadArchitecture) GetHashValue() uint32 {
	hashValue := uint32(0xEC42E90D)
	hashValue ^= uint32(n.TransformedFeatureDimensions * 2)

	hashValue = n.FC0.GetHashValue(hashValue)
	hashValue = n.Ac0.GetHashValue(hashValue)
	hashValue = n.FC1.GetHashValue(hashValue)
	hashValue = n.Ac1.GetHashValue(hashValue)
	hashValue = n.FC2.GetHashValue(hashValue)

	return hashValue
}

// ReadParameters reads all layer parameters from a stream. The
// activation layers carry none.
func (n *HeadArchitecture) ReadParameters(r io.Reader) error {
	if err := n.FC0.ReadParameters(r); err != nil {
		return err
	}
	if err := n.FC1.ReadParameters(r); err != nil {
		return err
	}
	return n.FC2.ReadParameters(r)
}

// WriteParameters writes all layer parameters to a stream.
func (n *HeadArchitecture) WriteParameters(w io.Writer) error {
	if err := n.FC0.WriteParameters(w); err != nil {
		return err
	}
	if err := n.FC1.WriteParameters(w); err != nil {
		return err
	}
	return n.FC2.WriteParameters(w)
}

// Propagate runs the forward pass over the packed transformer output.
func (n *HeadArchitecture) Propagate(transformedFeatures []uint8) int32 {
	fc0Out := n.buffers.FC0Out[:common.CeilToMultiple(n.FC0Outputs, 32)]
	acSqr0Out := n.buffers.AcSqr0Out[:common.CeilToMultiple(n.FC0Outputs*2, 32)]
	ac0Out := n.buffers.Ac0Out[:common.CeilToMultiple(n.FC0Outputs, 32)]
	fc1Out := n.buffers.FC1Out[:common.CeilToMultiple(n.FC1Outputs, 32)]
	ac1Out := n.buffers.Ac1Out[:common.CeilToMultiple(n.FC1Outputs, 32)]
	fc2Out := n.buffers.FC2Out[:common.CeilToMultiple(1, 32)]

	n.FC0.Propagate(transformedFeatures, fc0Out)
	n.AcSqr0.Propagate(fc0Out, acSqr0Out[:n.FC0Outputs])
	n.Ac0.Propagate(fc0Out, ac0Out)

	// The squared and plain activations are concatenated into the FC1 input.
	copy(acSqr0Out[n.FC0Outputs:], ac0Out[:n.FC0Outputs])

	n.FC1.Propagate(acSqr0Out, fc1Out)
	n.Ac1.Propagate(fc1Out, ac1Out)
	n.FC2.Propagate(ac1Out, fc2Out)

	// The last FC0 output skips past the deeper layers and feeds the
	// final sum directly, rescaled to the output quantization.
	fwdOut := fc0Out[n.FC0Outputs-1] * (600 * OutputScale) / (127 * (1 << WeightScaleBits))

	return fc2Out[0] + fwdOut
}
