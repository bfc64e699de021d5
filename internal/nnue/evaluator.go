// Evaluator: accumulator maintenance over a position's history chain and
// the evaluation entry point.

package nnue

import (
	"github.com/hezhaoyun/xqengine/internal/board"
	"github.com/hezhaoyun/xqengine/internal/nnue/features"
)

const (
	// refreshCost approximates the column applications of a cache-seeded
	// refresh. The backward walk gives up and refreshes once the summed
	// update cost of the visited records would exceed it.
	refreshCost = 64

	// updateCost is the column applications of one dirty piece: its old
	// square and its new one.
	updateCost = 2
)

// Evaluator owns the accumulator stack and refresh cache of one analysis
// context. The network is shared and read-only; the evaluator is not.
type Evaluator struct {
	Net   *Network
	Stack *AccumulatorStack
	Cache *AccumulatorCache
}

// NewEvaluator creates an evaluator over a loaded network.
func NewEvaluator(net *Network) *Evaluator {
	halfDims := net.FeatureTransformer.HalfDimensions
	return &Evaluator{
		Net:   net,
		Stack: NewAccumulatorStack(halfDims),
		Cache: NewAccumulatorCache(halfDims, net.FeatureTransformer.Biases),
	}
}

// Reset binds the evaluator to the given position's current state as the
// root of its history chain. The refresh cache stays warm: its entries
// remain valid snapshots under the same network.
func (e *Evaluator) Reset(pos *board.Position) {
	e.Stack.Reset(pos)
}

// Push records the move just made on pos. Call after every MakeMove.
func (e *Evaluator) Push(pos *board.Position) {
	e.Stack.Push(pos)
}

// Pop drops the newest record. Call after every UnmakeMove.
func (e *Evaluator) Pop() {
	e.Stack.Pop()
}

// Evaluate returns the position's value and the raw bucketed material
// score as a secondary signal, from the side to move's point of view.
func (e *Evaluator) Evaluate(pos *board.Position) (value, psqt int32) {
	e.ensureComputed(pos, board.Red)
	e.ensureComputed(pos, board.Black)

	acc := e.Stack.Current()
	psqtScore, positional := e.Net.Evaluate(
		acc.Accumulation, acc.PSQTAccumulation,
		int(pos.SideToMove()), pos.PieceCount())

	return psqtScore + positional, psqtScore
}

// ensureComputed establishes the computed invariant for one perspective
// of the newest record. It walks the history chain backward under a cost
// budget looking for a computed ancestor to update forward from, and
// falls back to a cache-seeded refresh when none is reachable.
func (e *Evaluator) ensureComputed(pos *board.Position, perspective board.Color) {
	curr := e.Stack.Size() - 1
	if e.Stack.at(curr).Computed[perspective] {
		return
	}

	budget := refreshCost
	oldest := curr
	for {
		acc := e.Stack.at(oldest)
		if acc.Computed[perspective] {
			break
		}
		// A bucket change invalidates every feature index across this
		// record; deltas cannot cross it. The root record has no parent
		// to update from.
		if acc.needsRefresh[perspective] || oldest == 0 {
			e.refresh(pos, perspective)
			return
		}
		budget -= acc.dirty.Num * updateCost
		if budget < 0 {
			e.refresh(pos, perspective)
			return
		}
		oldest--
	}

	for i := oldest + 1; i <= curr; i++ {
		e.applyDelta(e.Stack.at(i-1), e.Stack.at(i), perspective)
	}
}

// applyDelta computes acc from its computed parent by applying the
// record's dirty-piece feature delta.
func (e *Evaluator) applyDelta(parent, acc *Accumulator, perspective board.Color) {
	var removed, added features.IndexList
	features.AppendChangedIndices(perspective, acc.Buckets[perspective], acc.dirty, &removed, &added)

	copy(acc.Accumulation[perspective], parent.Accumulation[perspective])
	copy(acc.PSQTAccumulation[perspective], parent.PSQTAccumulation[perspective])
	e.Net.FeatureTransformer.UpdateAccumulator(
		removed.Slice(), added.Slice(),
		acc.Accumulation[perspective], acc.PSQTAccumulation[perspective])

	acc.Computed[perspective] = true
}

// refresh recomputes the newest record's accumulator for one perspective
// from the cache entry of its bucket key. The entry's stored bitboards
// are diffed against the position per (color, piece type) to obtain the
// exact feature delta; the entry is updated in place together with its
// snapshot, then copied into the record.
func (e *Evaluator) refresh(pos *board.Position, perspective board.Color) {
	acc := e.Stack.Current()
	b := acc.Buckets[perspective]
	entry := e.Cache.entry(b, perspective)

	var removed, added features.IndexList
	for c := board.Red; c <= board.Black; c++ {
		for t := board.Rook; t <= board.King; t++ {
			oldBB := entry.byColor[c].And(entry.byType[t])
			newBB := pos.Pieces(c, t)
			pc := board.NewPiece(t, c)

			gone := oldBB.AndNot(newBB)
			for gone.Any() {
				removed.Push(features.MakeIndex(perspective, b, pc, gone.PopLSB()))
			}
			arrived := newBB.AndNot(oldBB)
			for arrived.Any() {
				added.Push(features.MakeIndex(perspective, b, pc, arrived.PopLSB()))
			}
		}
	}

	e.Net.FeatureTransformer.UpdateAccumulator(
		removed.Slice(), added.Slice(),
		entry.accumulation, entry.psqtAccumulation)
	for c := board.Red; c <= board.Black; c++ {
		entry.byColor[c] = pos.PiecesByColor(c)
	}
	for t := board.Rook; t <= board.King; t++ {
		entry.byType[t] = pos.PiecesByType(t)
	}

	copy(acc.Accumulation[perspective], entry.accumulation)
	copy(acc.PSQTAccumulation[perspective], entry.psqtAccumulation)
	acc.Computed[perspective] = true
}
