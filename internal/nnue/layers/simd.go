// Scalar kernels for the affine layers. A vectorized build replaces the
// hot loops at the transformer level; the head layers are narrow enough
// that chunked scalar accumulation stays off the profile.

package layers

// SparseChunkMulAcc accumulates one non-zero chunk of four input bytes
// across all outputs. weights holds the chunk's columns interleaved per
// output, as laid out by getWeightIndex.
func SparseChunkMulAcc(output []int32, weights []int8, outLen int, b0, b1, b2, b3 int32) {
	for k := 0; k < outLen; k++ {
		off := k * 4
		output[k] += int32(weights[off])*b0 +
			int32(weights[off+1])*b1 +
			int32(weights[off+2])*b2 +
			int32(weights[off+3])*b3
	}
}
