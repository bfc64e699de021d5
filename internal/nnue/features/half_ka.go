// HalfKA feature set for Xiangqi.
//
// Feature HalfKA: combination of the position of the own king and the
// position of every piece, viewed from each side's perspective. The king
// placement selects a king bucket out of the six distinct palace cells
// (positions with the king on the right palace file are mirrored onto the
// left one), and the opposing rook/cannon material selects a secondary
// attack bucket. The pair picks one of 36 weight buckets.

package features

import (
	"github.com/hezhaoyun/xqengine/internal/board"
)

// Feature name, embedded in the weight file description.
const Name = "HalfKA-XQ(Friend)"

// HashValue identifies the feature set in the weight file header.
const HashValue uint32 = 0x5b2f91c4

const (
	// PieceBlocks is one block per (color, piece type) pair, own side first.
	PieceBlocks = 14

	// BlockDimensions is the feature count of one weight bucket.
	BlockDimensions = PieceBlocks * board.SquareNB // 1260

	// KingBuckets covers the six distinct palace cells after mirroring.
	KingBuckets = 6

	// AttackBuckets discretizes the opposing rook/cannon material.
	AttackBuckets = 6

	// WeightBuckets is the number of independent weight blocks.
	WeightBuckets = KingBuckets * AttackBuckets

	// Dimensions is the total feature count per perspective.
	Dimensions = WeightBuckets * BlockDimensions // 45360

	// MaxActiveDimensions bounds the simultaneously active features:
	// at most 32 pieces are on the board.
	MaxActiveDimensions = 32
)

// pieceSquareIndex maps a piece to its block index for each perspective.
// Own pieces occupy blocks 0..6 in piece-type order, opposing pieces 7..13.
var pieceSquareIndex = [board.ColorNB][board.PieceNB]int{
	board.Red: {
		board.RedRook: 0, board.RedKnight: 1, board.RedCannon: 2,
		board.RedElephant: 3, board.RedAdvisor: 4, board.RedPawn: 5,
		board.RedKing: 6,
		board.BlackRook: 7, board.BlackKnight: 8, board.BlackCannon: 9,
		board.BlackElephant: 10, board.BlackAdvisor: 11, board.BlackPawn: 12,
		board.BlackKing: 13,
	},
	board.Black: {
		board.BlackRook: 0, board.BlackKnight: 1, board.BlackCannon: 2,
		board.BlackElephant: 3, board.BlackAdvisor: 4, board.BlackPawn: 5,
		board.BlackKing: 6,
		board.RedRook: 7, board.RedKnight: 8, board.RedCannon: 9,
		board.RedElephant: 10, board.RedAdvisor: 11, board.RedPawn: 12,
		board.RedKing: 13,
	},
}

// Buckets is the bucket key of one perspective's feature indices. Two
// positions share feature indices only if all three fields match.
type Buckets struct {
	King   int
	Attack int
	Mirror bool
}

// Weight returns the weight bucket selected by this key.
func (b Buckets) Weight() int {
	return b.King*AttackBuckets + b.Attack
}

// MakeBuckets derives the bucket key of one perspective from a position.
func MakeBuckets(pos *board.Position, perspective board.Color) Buckets {
	ksq := pos.KingSquare(perspective)
	if perspective == board.Black {
		ksq = ksq.Rotate()
	}

	file, rank := ksq.File(), ksq.Rank()
	kb := rank * 2
	if file != 4 {
		kb++
	}

	return Buckets{
		King:   kb,
		Attack: AttackBucket(pos, perspective),
		Mirror: file == 5,
	}
}

// AttackBucket discretizes the opposing line-piece material: each rook
// counts double, each cannon single, capped at AttackBuckets-1.
func AttackBucket(pos *board.Position, perspective board.Color) int {
	them := perspective.Other()
	rooks := pos.Pieces(them, board.Rook).Count()
	cannons := pos.Pieces(them, board.Cannon).Count()
	b := rooks*2 + cannons
	if b >= AttackBuckets {
		b = AttackBuckets - 1
	}
	return b
}

// OrientSquare maps a square into the perspective's frame: Black sees the
// board rotated, and a mirrored king placement flips the files.
func OrientSquare(perspective board.Color, mirror bool, sq board.Square) board.Square {
	if perspective == board.Black {
		sq = sq.Rotate()
	}
	if mirror {
		sq = sq.MirrorFile()
	}
	return sq
}

// MakeIndex computes the feature index of a piece from a perspective.
func MakeIndex(perspective board.Color, b Buckets, pc board.Piece, sq board.Square) int {
	osq := OrientSquare(perspective, b.Mirror, sq)
	return b.Weight()*BlockDimensions + pieceSquareIndex[perspective][pc]*board.SquareNB + int(osq)
}

// IndexList is a fixed-capacity list of feature indices.
type IndexList struct {
	Values [MaxActiveDimensions]int
	Size   int
}

// Push appends an index.
func (l *IndexList) Push(idx int) {
	l.Values[l.Size] = idx
	l.Size++
}

// Clear empties the list.
func (l *IndexList) Clear() {
	l.Size = 0
}

// Slice returns the populated prefix.
func (l *IndexList) Slice() []int {
	return l.Values[:l.Size]
}

// AppendActiveIndices collects the feature indices of every piece on the
// board for one perspective.
func AppendActiveIndices(pos *board.Position, perspective board.Color, b Buckets, active *IndexList) {
	occ := pos.Occupied()
	for occ.Any() {
		sq := occ.PopLSB()
		active.Push(MakeIndex(perspective, b, pos.PieceAt(sq), sq))
	}
}

// AppendChangedIndices translates a dirty-piece delta into removed and
// added feature indices for one perspective. The bucket key must be the
// one both sides of the delta were computed under.
func AppendChangedIndices(perspective board.Color, b Buckets, dirty board.DirtyPiece, removed, added *IndexList) {
	for i := 0; i < dirty.Num; i++ {
		if dirty.From[i] != board.NoSquare {
			removed.Push(MakeIndex(perspective, b, dirty.Piece[i], dirty.From[i]))
		}
		if dirty.To[i] != board.NoSquare {
			added.Push(MakeIndex(perspective, b, dirty.Piece[i], dirty.To[i]))
		}
	}
}
