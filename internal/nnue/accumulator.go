// Accumulator records and the bucketed refresh cache.

package nnue

import (
	"github.com/hezhaoyun/xqengine/internal/board"
	"github.com/hezhaoyun/xqengine/internal/nnue/features"
)

// Accumulator holds the transformed feature activations of one history
// record, one vector per perspective. A computed flag is true only when
// every lane of that perspective's vector reflects the exact feature set
// of the record's board state.
type Accumulator struct {
	Accumulation     [2][]int16
	PSQTAccumulation [2][]int32
	Computed         [2]bool

	// Buckets is the per-perspective bucket key the feature indices of
	// this record resolve under.
	Buckets [2]features.Buckets

	// dirty is the piece delta from the previous record.
	dirty board.DirtyPiece

	// needsRefresh marks a perspective whose bucket key changed relative
	// to the previous record: its feature indices are incompatible with
	// the parent's, so incremental deltas cannot cross this record.
	needsRefresh [2]bool
}

func newAccumulator(halfDims int) Accumulator {
	return Accumulator{
		Accumulation: [2][]int16{
			make([]int16, halfDims),
			make([]int16, halfDims),
		},
		PSQTAccumulation: [2][]int32{
			make([]int32, PSQTBuckets),
			make([]int32, PSQTBuckets),
		},
	}
}

// MaxStackSize is the deepest history chain the stack supports.
const MaxStackSize = 256

// AccumulatorStack is an arena of accumulators parallel to the board's
// history chain: entry i belongs to the record at ply i. Push appends on
// move make, Pop truncates on unmake; older entries are never mutated
// once a successor exists.
type AccumulatorStack struct {
	accumulators []Accumulator
	size         int
}

// NewAccumulatorStack creates a stack with every entry preallocated at
// the given accumulator width.
func NewAccumulatorStack(halfDims int) *AccumulatorStack {
	s := &AccumulatorStack{
		accumulators: make([]Accumulator, MaxStackSize),
		size:         1,
	}
	for i := range s.accumulators {
		s.accumulators[i] = newAccumulator(halfDims)
	}
	return s
}

// Reset reinitializes the stack to the root of the given position's
// history chain.
func (s *AccumulatorStack) Reset(pos *board.Position) {
	s.size = 1
	root := &s.accumulators[0]
	root.Computed[0] = false
	root.Computed[1] = false
	root.dirty = board.DirtyPiece{}
	for c := board.Red; c <= board.Black; c++ {
		root.Buckets[c] = features.MakeBuckets(pos, c)
		root.needsRefresh[c] = true
	}
}

// Push appends an accumulator record for the move just made on pos.
func (s *AccumulatorStack) Push(pos *board.Position) {
	if s.size >= MaxStackSize {
		panic("accumulator stack overflow")
	}
	parent := &s.accumulators[s.size-1]
	acc := &s.accumulators[s.size]
	s.size++

	acc.Computed[0] = false
	acc.Computed[1] = false
	acc.dirty = pos.LastDirty()
	for c := board.Red; c <= board.Black; c++ {
		acc.Buckets[c] = features.MakeBuckets(pos, c)
		acc.needsRefresh[c] = acc.Buckets[c] != parent.Buckets[c]
	}
}

// Pop drops the newest record after an unmake.
func (s *AccumulatorStack) Pop() {
	if s.size <= 1 {
		panic("accumulator stack underflow")
	}
	s.size--
}

// Current returns the accumulator of the newest record.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.accumulators[s.size-1]
}

// at returns the accumulator at stack index i, 0 being the root.
func (s *AccumulatorStack) at(i int) *Accumulator {
	return &s.accumulators[i]
}

// Size returns the number of records on the stack.
func (s *AccumulatorStack) Size() int {
	return s.size
}

// cacheEntry is one cached accumulator snapshot: the accumulated vector
// together with the exact board bitboards it was computed from. The two
// halves are always updated together.
type cacheEntry struct {
	accumulation     []int16
	psqtAccumulation []int32

	byColor [board.ColorNB]board.Bitboard
	byType  [board.PieceTypeNB]board.Bitboard
}

// cacheEntries covers every (king bucket, mirror, attack bucket) key.
const cacheEntries = features.KingBuckets * 2 * features.AttackBuckets

// AccumulatorCache holds one accumulator snapshot per bucket key and
// perspective. Entries are seeded from the transformer biases (the empty
// board) and overwritten in place on every refresh; they are never
// evicted for the lifetime of the owning analysis context.
type AccumulatorCache struct {
	entries  [cacheEntries][2]cacheEntry
	halfDims int
}

// NewAccumulatorCache creates a cache seeded with the given biases.
func NewAccumulatorCache(halfDims int, biases []int16) *AccumulatorCache {
	c := &AccumulatorCache{halfDims: halfDims}
	for i := range c.entries {
		for p := 0; p < 2; p++ {
			entry := &c.entries[i][p]
			entry.accumulation = make([]int16, halfDims)
			entry.psqtAccumulation = make([]int32, PSQTBuckets)
		}
	}
	c.Clear(biases)
	return c
}

// Clear reseeds every entry to the empty board.
func (c *AccumulatorCache) Clear(biases []int16) {
	for i := range c.entries {
		for p := 0; p < 2; p++ {
			entry := &c.entries[i][p]
			copy(entry.accumulation, biases)
			for b := range entry.psqtAccumulation {
				entry.psqtAccumulation[b] = 0
			}
			entry.byColor = [board.ColorNB]board.Bitboard{}
			entry.byType = [board.PieceTypeNB]board.Bitboard{}
		}
	}
}

// entry returns the cache slot for a bucket key and perspective.
func (c *AccumulatorCache) entry(b features.Buckets, perspective board.Color) *cacheEntry {
	idx := b.King * 2 * features.AttackBuckets
	if b.Mirror {
		idx += features.AttackBuckets
	}
	idx += b.Attack
	return &c.entries[idx][perspective]
}
