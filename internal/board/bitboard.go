package board

import (
	"math/bits"
	"strings"
)

// Bitboard represents a 90-square board as a 128-bit occupancy set.
// Squares 0-63 live in Lo, squares 64-89 in the low 26 bits of Hi.
type Bitboard struct {
	Lo, Hi uint64
}

// EmptyBB and UniverseBB are the extreme occupancy sets.
var (
	EmptyBB    = Bitboard{}
	UniverseBB = Bitboard{Lo: ^uint64(0), Hi: (1 << 26) - 1}
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	if sq < 64 {
		return Bitboard{Lo: 1 << sq}
	}
	return Bitboard{Hi: 1 << (sq - 64)}
}

// IsSet returns true if the given square's bit is set.
func (b Bitboard) IsSet(sq Square) bool {
	if sq < 64 {
		return b.Lo&(1<<sq) != 0
	}
	return b.Hi&(1<<(sq-64)) != 0
}

// Set sets the given square's bit.
func (b *Bitboard) Set(sq Square) {
	if sq < 64 {
		b.Lo |= 1 << sq
	} else {
		b.Hi |= 1 << (sq - 64)
	}
}

// Clear clears the given square's bit.
func (b *Bitboard) Clear(sq Square) {
	if sq < 64 {
		b.Lo &^= 1 << sq
	} else {
		b.Hi &^= 1 << (sq - 64)
	}
}

// And returns the intersection of two bitboards.
func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo & o.Lo, Hi: b.Hi & o.Hi}
}

// Or returns the union of two bitboards.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo | o.Lo, Hi: b.Hi | o.Hi}
}

// Xor returns the symmetric difference of two bitboards.
func (b Bitboard) Xor(o Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo ^ o.Lo, Hi: b.Hi ^ o.Hi}
}

// AndNot returns the squares in b that are not in o.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{Lo: b.Lo &^ o.Lo, Hi: b.Hi &^ o.Hi}
}

// Not returns the complement within the 90 board squares.
func (b Bitboard) Not() Bitboard {
	return Bitboard{Lo: ^b.Lo, Hi: ^b.Hi & ((1 << 26) - 1)}
}

// Any returns true if any bit is set.
func (b Bitboard) Any() bool {
	return b.Lo|b.Hi != 0
}

// IsEmpty returns true if no bit is set.
func (b Bitboard) IsEmpty() bool {
	return b.Lo|b.Hi == 0
}

// Count returns the number of set bits.
func (b Bitboard) Count() int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

// MoreThanOne returns true if at least two bits are set.
func (b Bitboard) MoreThanOne() bool {
	return b.Lo&(b.Lo-1) != 0 || b.Hi&(b.Hi-1) != 0 || (b.Lo != 0 && b.Hi != 0)
}

// LSB returns the lowest set square. The bitboard must be non-empty.
func (b Bitboard) LSB() Square {
	if b.Lo != 0 {
		return Square(bits.TrailingZeros64(b.Lo))
	}
	return Square(64 + bits.TrailingZeros64(b.Hi))
}

// PopLSB clears and returns the lowest set square.
// The bitboard must be non-empty.
func (b *Bitboard) PopLSB() Square {
	if b.Lo != 0 {
		sq := Square(bits.TrailingZeros64(b.Lo))
		b.Lo &= b.Lo - 1
		return sq
	}
	sq := Square(64 + bits.TrailingZeros64(b.Hi))
	b.Hi &= b.Hi - 1
	return sq
}

// String returns a board diagram of the bitboard for debugging.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 9; rank >= 0; rank-- {
		for file := 0; file < 9; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteByte('X')
			} else {
				sb.WriteByte('.')
			}
			if file < 8 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// File, rank, palace and river-half masks, filled in by init.
var (
	FileBB   [FileNB]Bitboard
	RankBB   [RankNB]Bitboard
	PalaceBB [ColorNB]Bitboard
	HalfBB   [ColorNB]Bitboard
)

func init() {
	for sq := A0; sq < NoSquare; sq++ {
		FileBB[sq.File()].Set(sq)
		RankBB[sq.Rank()].Set(sq)
		for c := Red; c < NoColor; c++ {
			if sq.InPalace(c) {
				PalaceBB[c].Set(sq)
			}
			if sq.OwnHalf(c) {
				HalfBB[c].Set(sq)
			}
		}
	}
}
