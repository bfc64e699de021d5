//go:build goexperiment.simd && amd64

// Vectorized accumulator kernels. Requires Go 1.26+ with
// GOEXPERIMENT=simd on AMD64.

package nnue

import (
	"simd/archsimd"
)

// Number of int16 values processed per iteration (256-bit registers).
const simdInt16Width = 16

// packBlockOrder is the 64-bit block order the accumulator vectors are
// permuted into at load time. It matches the interleaving of the
// narrowing pack instruction over two 256-bit registers, so packing the
// clipped lanes needs no shuffle afterwards. The table is self-inverse.
var packBlockOrder = [8]int{0, 2, 1, 3, 4, 6, 5, 7}

// AddInt16 computes dst[i] += src[i].
func AddInt16(dst, src []int16) {
	n := len(dst)
	if n != len(src) {
		panic("AddInt16: slice length mismatch")
	}

	i := 0
	for ; i+simdInt16Width <= n; i += simdInt16Width {
		d := archsimd.LoadInt16x16(dst[i:])
		s := archsimd.LoadInt16x16(src[i:])
		archsimd.StoreInt16x16(dst[i:], d.Add(s))
	}
	for ; i < n; i++ {
		dst[i] += src[i]
	}
}

// SubInt16 computes dst[i] -= src[i].
func SubInt16(dst, src []int16) {
	n := len(dst)
	if n != len(src) {
		panic("SubInt16: slice length mismatch")
	}

	i := 0
	for ; i+simdInt16Width <= n; i += simdInt16Width {
		d := archsimd.LoadInt16x16(dst[i:])
		s := archsimd.LoadInt16x16(src[i:])
		archsimd.StoreInt16x16(dst[i:], d.Sub(s))
	}
	for ; i < n; i++ {
		dst[i] -= src[i]
	}
}

// AddSubInt16 computes dst[i] += add[i] - sub[i] in one pass.
func AddSubInt16(dst, add, sub []int16) {
	n := len(dst)
	if n != len(add) || n != len(sub) {
		panic("AddSubInt16: slice length mismatch")
	}

	i := 0
	for ; i+simdInt16Width <= n; i += simdInt16Width {
		d := archsimd.LoadInt16x16(dst[i:])
		a := archsimd.LoadInt16x16(add[i:])
		s := archsimd.LoadInt16x16(sub[i:])
		archsimd.StoreInt16x16(dst[i:], d.Add(a).Sub(s))
	}
	for ; i < n; i++ {
		dst[i] += add[i] - sub[i]
	}
}

// Add2Sub2Int16 computes dst[i] += add1[i] + add2[i] - sub1[i] - sub2[i]
// in one pass.
func Add2Sub2Int16(dst, add1, add2, sub1, sub2 []int16) {
	n := len(dst)
	if n != len(add1) || n != len(add2) || n != len(sub1) || n != len(sub2) {
		panic("Add2Sub2Int16: slice length mismatch")
	}

	i := 0
	for ; i+simdInt16Width <= n; i += simdInt16Width {
		d := archsimd.LoadInt16x16(dst[i:])
		a1 := archsimd.LoadInt16x16(add1[i:])
		a2 := archsimd.LoadInt16x16(add2[i:])
		s1 := archsimd.LoadInt16x16(sub1[i:])
		s2 := archsimd.LoadInt16x16(sub2[i:])
		archsimd.StoreInt16x16(dst[i:], d.Add(a1).Add(a2).Sub(s1).Sub(s2))
	}
	for ; i < n; i++ {
		dst[i] += add1[i] + add2[i] - sub1[i] - sub2[i]
	}
}
