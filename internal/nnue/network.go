// Network loading, saving and raw evaluation.

package nnue

import (
	"fmt"
	"io"
	"os"

	"github.com/hezhaoyun/xqengine/internal/nnue/common"
	"github.com/hezhaoyun/xqengine/internal/nnue/features"
)

// Version of the weight file format ("XQN1").
const Version uint32 = 0x58514e31

// Network is a complete evaluation network: the feature transformer plus
// one head layer stack per material bucket. Immutable after load; safe to
// share across analysis contexts.
type Network struct {
	FeatureTransformer *FeatureTransformer
	LayerStacks        [LayerStacks]*HeadArchitecture

	NetDescription string
	Hash           uint32
}

// NewNetwork creates an unloaded network at the standard dimensions.
// Weights are zero until Load or direct initialization.
func NewNetwork() *Network {
	return newNetworkDims(TransformedFeatureDimensions, features.Dimensions)
}

func newNetworkDims(halfDims, inputDims int) *Network {
	net := &Network{
		FeatureTransformer: newFeatureTransformer(halfDims, inputDims),
		NetDescription:     features.Name,
	}
	for i := 0; i < LayerStacks; i++ {
		net.LayerStacks[i] = newHeadArchitecture(halfDims)
	}
	net.Hash = net.FeatureTransformer.GetHashValue() ^ net.LayerStacks[0].GetHashValue()
	return net
}

// Load reads network parameters from a weight file.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open network file: %w", err)
	}
	defer f.Close()

	if err := n.ReadFrom(f); err != nil {
		return fmt.Errorf("invalid network %s: %w", filename, err)
	}
	return nil
}

// Save writes network parameters to a weight file.
func (n *Network) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create network file: %w", err)
	}
	defer f.Close()

	if err := n.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write network %s: %w", filename, err)
	}
	return f.Close()
}

// ReadFrom reads network parameters from a stream.
func (n *Network) ReadFrom(r io.Reader) error {
	hashValue, description, err := readHeader(r)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if hashValue != n.Hash {
		return fmt.Errorf("hash mismatch: expected %08x, got %08x", n.Hash, hashValue)
	}
	n.NetDescription = description

	transformerHash, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("failed to read transformer hash: %w", err)
	}
	if expected := n.FeatureTransformer.GetHashValue(); transformerHash != expected {
		return fmt.Errorf("transformer hash mismatch: expected %08x, got %08x",
			expected, transformerHash)
	}
	if err := n.FeatureTransformer.ReadParameters(r); err != nil {
		return fmt.Errorf("failed to read transformer parameters: %w", err)
	}

	for i := 0; i < LayerStacks; i++ {
		stackHash, err := common.ReadLittleEndian[uint32](r)
		if err != nil {
			return fmt.Errorf("failed to read layer stack %d hash: %w", i, err)
		}
		if expected := n.LayerStacks[i].GetHashValue(); stackHash != expected {
			return fmt.Errorf("layer stack %d hash mismatch: expected %08x, got %08x",
				i, expected, stackHash)
		}
		if err := n.LayerStacks[i].ReadParameters(r); err != nil {
			return fmt.Errorf("failed to read layer stack %d: %w", i, err)
		}
	}

	return nil
}

// WriteTo writes network parameters to a stream in the same layout
// ReadFrom consumes, so a write-then-read round trip is the identity.
func (n *Network) WriteTo(w io.Writer) error {
	if err := writeHeader(w, n.Hash, n.NetDescription); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := common.WriteLittleEndian(w, n.FeatureTransformer.GetHashValue()); err != nil {
		return fmt.Errorf("failed to write transformer hash: %w", err)
	}
	if err := n.FeatureTransformer.WriteParameters(w); err != nil {
		return fmt.Errorf("failed to write transformer parameters: %w", err)
	}

	for i := 0; i < LayerStacks; i++ {
		if err := common.WriteLittleEndian(w, n.LayerStacks[i].GetHashValue()); err != nil {
			return fmt.Errorf("failed to write layer stack %d hash: %w", i, err)
		}
		if err := n.LayerStacks[i].WriteParameters(w); err != nil {
			return fmt.Errorf("failed to write layer stack %d: %w", i, err)
		}
	}

	return nil
}

// readHeader reads and validates the weight file header.
func readHeader(r io.Reader) (uint32, string, error) {
	version, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read version: %w", err)
	}
	if version != Version {
		return 0, "", fmt.Errorf("version mismatch: expected %08x, got %08x", Version, version)
	}

	hashValue, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read hash: %w", err)
	}

	descSize, err := common.ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read description size: %w", err)
	}
	descBytes := make([]byte, descSize)
	if _, err := io.ReadFull(r, descBytes); err != nil {
		return 0, "", fmt.Errorf("failed to read description: %w", err)
	}

	return hashValue, string(descBytes), nil
}

// writeHeader writes the weight file header.
func writeHeader(w io.Writer, hash uint32, description string) error {
	if err := common.WriteLittleEndian(w, Version); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(w, hash); err != nil {
		return err
	}
	if err := common.WriteLittleEndian(w, uint32(len(description))); err != nil {
		return err
	}
	_, err := w.Write([]byte(description))
	return err
}

// materialBucket selects the layer stack and PSQT bucket by piece count.
func materialBucket(pieceCount int) int {
	bucket := (pieceCount - 1) / 4
	if bucket < 0 {
		bucket = 0
	} else if bucket >= LayerStacks {
		bucket = LayerStacks - 1
	}
	return bucket
}

// Evaluate runs the transform and head over computed accumulators and
// returns the bucketed material score and the positional score, both
// scaled to the engine's value resolution.
func (n *Network) Evaluate(
	accumulation [2][]int16,
	psqtAccumulation [2][]int32,
	sideToMove int,
	pieceCount int,
) (psqt, positional int32) {
	bucket := materialBucket(pieceCount)
	perspectives := [2]int{sideToMove, 1 - sideToMove}

	transformedFeatures := make([]uint8, n.FeatureTransformer.HalfDimensions)
	psqt = n.FeatureTransformer.Transform(
		accumulation, psqtAccumulation, perspectives, bucket, transformedFeatures)

	positional = n.LayerStacks[bucket].Propagate(transformedFeatures)

	return psqt / OutputScale, positional / OutputScale
}
