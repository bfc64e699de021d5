// Binary I/O helpers for the network weight format.

package common

import (
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"
)

// MaxSimdWidth is the widest vector register width in bytes the padded
// layer layouts are sized for.
const MaxSimdWidth = 32

// CacheLineSize in bytes.
const CacheLineSize = 64

// FixedInt covers the fixed-width integer types that appear in the
// weight file. Plain int/uint are excluded: their size is platform
// dependent and binary.Read rejects them.
type FixedInt interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32
}

// CeilToMultiple rounds n up to a multiple of base.
func CeilToMultiple[T constraints.Integer](n, base T) T {
	return (n + base - 1) / base * base
}

// ReadLittleEndian reads one integer from a little-endian stream.
func ReadLittleEndian[T FixedInt](r io.Reader) (T, error) {
	var result T
	err := binary.Read(r, binary.LittleEndian, &result)
	return result, err
}

// ReadLittleEndianSlice reads integers in bulk from a little-endian stream.
func ReadLittleEndianSlice[T FixedInt](r io.Reader, out []T) error {
	return binary.Read(r, binary.LittleEndian, out)
}

// WriteLittleEndian writes one integer to a little-endian stream.
func WriteLittleEndian[T FixedInt](w io.Writer, value T) error {
	return binary.Write(w, binary.LittleEndian, value)
}

// WriteLittleEndianSlice writes integers in bulk to a little-endian stream.
func WriteLittleEndianSlice[T FixedInt](w io.Writer, values []T) error {
	return binary.Write(w, binary.LittleEndian, values)
}
