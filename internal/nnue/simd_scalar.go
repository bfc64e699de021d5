//go:build !goexperiment.simd || !amd64

// Scalar fallback for the accumulator kernels. The incremental and
// refresh algorithms are written once against these helpers; a
// vectorized build swaps in simd.go.

package nnue

// packBlockOrder is the 64-bit block order the accumulator vectors are
// permuted into at load time. The scalar pack is a plain copy, so the
// natural order applies.
var packBlockOrder = [8]int{0, 1, 2, 3, 4, 5, 6, 7}

// AddInt16 computes dst[i] += src[i].
func AddInt16(dst, src []int16) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// SubInt16 computes dst[i] -= src[i].
func SubInt16(dst, src []int16) {
	for i := range dst {
		dst[i] -= src[i]
	}
}

// AddSubInt16 computes dst[i] += add[i] - sub[i] in one pass.
func AddSubInt16(dst, add, sub []int16) {
	for i := range dst {
		dst[i] += add[i] - sub[i]
	}
}

// Add2Sub2Int16 computes dst[i] += add1[i] + add2[i] - sub1[i] - sub2[i]
// in one pass.
func Add2Sub2Int16(dst, add1, add2, sub1, sub2 []int16) {
	for i := range dst {
		dst[i] += add1[i] + add2[i] - sub1[i] - sub2[i]
	}
}
