package board

// legStep pairs a destination square with the square that must be empty
// for the move to exist (a knight's leg or an elephant's eye).
type legStep struct {
	to, leg Square
}

// Pre-computed attack tables.
var (
	rays [SquareNB][4][]Square // orthogonal rays outward from each square

	knightSteps   [SquareNB][]legStep // leg adjacent to the from-square
	knightTargets [SquareNB][]legStep // reverse: from-squares whose knight attacks sq, leg adjacent to from
	elephantSteps [SquareNB][]legStep // eye is the midpoint; destination stays on the same half

	advisorAttacks [SquareNB]Bitboard // palace diagonal steps
	kingAttacks    [SquareNB]Bitboard // palace orthogonal steps
	pawnAttacks    [ColorNB][SquareNB]Bitboard
	pawnTargets    [ColorNB][SquareNB]Bitboard // squares from which a pawn of the color attacks sq

	// betweenBB[s1][s2] holds the squares whose occupation blocks an attack
	// from s2 to s1, plus s2 itself: the strictly-between squares for
	// orthogonal lines, or the knight's leg for a knight attack.
	betweenBB [SquareNB][SquareNB]Bitboard
	lineBB    [SquareNB][SquareNB]Bitboard // full file/rank through both squares
)

func init() {
	initRays()
	initKnightTables()
	initElephantTables()
	initPalaceTables()
	initPawnTables()
	initBetweenLine()
}

var orthoDirs = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

func initRays() {
	for sq := A0; sq < NoSquare; sq++ {
		for d, dir := range orthoDirs {
			f, r := sq.File()+dir[0], sq.Rank()+dir[1]
			for f >= 0 && f < FileNB && r >= 0 && r < RankNB {
				rays[sq][d] = append(rays[sq][d], NewSquare(f, r))
				f += dir[0]
				r += dir[1]
			}
		}
	}
}

func initKnightTables() {
	// Each jump (df,dr) is blocked by the orthogonally adjacent leg square.
	jumps := [8][4]int{
		{1, 2, 0, 1}, {-1, 2, 0, 1}, {1, -2, 0, -1}, {-1, -2, 0, -1},
		{2, 1, 1, 0}, {2, -1, 1, 0}, {-2, 1, -1, 0}, {-2, -1, -1, 0},
	}
	for sq := A0; sq < NoSquare; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, j := range jumps {
			tf, tr := f+j[0], r+j[1]
			if tf < 0 || tf >= FileNB || tr < 0 || tr >= RankNB {
				continue
			}
			to := NewSquare(tf, tr)
			leg := NewSquare(f+j[2], r+j[3])
			knightSteps[sq] = append(knightSteps[sq], legStep{to, leg})
			// The reverse relation keeps the same leg: it blocks the
			// attacker sitting on sq, not the attacked square.
			knightTargets[to] = append(knightTargets[to], legStep{sq, leg})
		}
	}
}

func initElephantTables() {
	steps := [4][2]int{{2, 2}, {2, -2}, {-2, 2}, {-2, -2}}
	for sq := A0; sq < NoSquare; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, s := range steps {
			tf, tr := f+s[0], r+s[1]
			if tf < 0 || tf >= FileNB || tr < 0 || tr >= RankNB {
				continue
			}
			// Elephants never cross the river.
			if (r <= 4) != (tr <= 4) {
				continue
			}
			to := NewSquare(tf, tr)
			eye := NewSquare(f+s[0]/2, r+s[1]/2)
			elephantSteps[sq] = append(elephantSteps[sq], legStep{to, eye})
		}
	}
}

func initPalaceTables() {
	diag := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	for sq := A0; sq < NoSquare; sq++ {
		for c := Red; c < NoColor; c++ {
			if !sq.InPalace(c) {
				continue
			}
			f, r := sq.File(), sq.Rank()
			for _, s := range diag {
				tf, tr := f+s[0], r+s[1]
				if tf >= 0 && tf < FileNB && tr >= 0 && tr < RankNB {
					if to := NewSquare(tf, tr); to.InPalace(c) {
						advisorAttacks[sq].Set(to)
					}
				}
			}
			for _, s := range orthoDirs {
				tf, tr := f+s[0], r+s[1]
				if tf >= 0 && tf < FileNB && tr >= 0 && tr < RankNB {
					if to := NewSquare(tf, tr); to.InPalace(c) {
						kingAttacks[sq].Set(to)
					}
				}
			}
		}
	}
}

func initPawnTables() {
	for sq := A0; sq < NoSquare; sq++ {
		f, r := sq.File(), sq.Rank()
		for c := Red; c < NoColor; c++ {
			forward := 1
			if c == Black {
				forward = -1
			}
			if tr := r + forward; tr >= 0 && tr < RankNB {
				pawnAttacks[c][sq].Set(NewSquare(f, tr))
			}
			// Sideways steps unlock after crossing the river.
			if !sq.OwnHalf(c) {
				if f > 0 {
					pawnAttacks[c][sq].Set(NewSquare(f-1, r))
				}
				if f < FileNB-1 {
					pawnAttacks[c][sq].Set(NewSquare(f+1, r))
				}
			}
		}
	}
	for sq := A0; sq < NoSquare; sq++ {
		for c := Red; c < NoColor; c++ {
			for to := A0; to < NoSquare; to++ {
				if pawnAttacks[c][to].IsSet(sq) {
					pawnTargets[c][sq].Set(to)
				}
			}
		}
	}
}

func initBetweenLine() {
	for s1 := A0; s1 < NoSquare; s1++ {
		for s2 := A0; s2 < NoSquare; s2++ {
			if s1 == s2 {
				continue
			}
			betweenBB[s1][s2] = SquareBB(s2)
			f1, r1 := s1.File(), s1.Rank()
			f2, r2 := s2.File(), s2.Rank()
			if f1 == f2 || r1 == r2 {
				df, dr := sign(f2-f1), sign(r2-r1)
				for f, r := f1+df, r1+dr; f != f2 || r != r2; f, r = f+df, r+dr {
					betweenBB[s1][s2].Set(NewSquare(f, r))
				}
				if f1 == f2 {
					lineBB[s1][s2] = FileBB[f1]
				} else {
					lineBB[s1][s2] = RankBB[r1]
				}
			}
		}
	}
	// A knight attack from s2 to s1 is blocked on the leg next to s2.
	for s2 := A0; s2 < NoSquare; s2++ {
		for _, st := range knightSteps[s2] {
			betweenBB[st.to][s2].Set(st.leg)
		}
	}
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	var att Bitboard
	for d := 0; d < 4; d++ {
		for _, s := range rays[sq][d] {
			att.Set(s)
			if occupied.IsSet(s) {
				break
			}
		}
	}
	return att
}

// CannonAttacks returns the cannon capture targets: the first piece beyond
// exactly one screen along each line. Quiet cannon moves use RookAttacks
// intersected with empty squares instead.
func CannonAttacks(sq Square, occupied Bitboard) Bitboard {
	var att Bitboard
	for d := 0; d < 4; d++ {
		screened := false
		for _, s := range rays[sq][d] {
			if !occupied.IsSet(s) {
				continue
			}
			if screened {
				att.Set(s)
				break
			}
			screened = true
		}
	}
	return att
}

// KnightAttacks returns the knight attack bitboard, honoring leg blocking.
func KnightAttacks(sq Square, occupied Bitboard) Bitboard {
	var att Bitboard
	for _, st := range knightSteps[sq] {
		if !occupied.IsSet(st.leg) {
			att.Set(st.to)
		}
	}
	return att
}

// KnightAttackersTo returns the squares from which a knight attacks sq,
// honoring leg blocking (the leg sits next to the attacker).
func KnightAttackersTo(sq Square, occupied Bitboard) Bitboard {
	var att Bitboard
	for _, st := range knightTargets[sq] {
		if !occupied.IsSet(st.leg) {
			att.Set(st.to)
		}
	}
	return att
}

// ElephantAttacks returns the elephant attack bitboard, honoring eye
// blocking and the river boundary. The relation is symmetric.
func ElephantAttacks(sq Square, occupied Bitboard) Bitboard {
	var att Bitboard
	for _, st := range elephantSteps[sq] {
		if !occupied.IsSet(st.leg) {
			att.Set(st.to)
		}
	}
	return att
}

// AdvisorAttacks returns the palace diagonal steps from a square.
func AdvisorAttacks(sq Square) Bitboard {
	return advisorAttacks[sq]
}

// KingAttacks returns the palace orthogonal steps from a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the pawn move bitboard for a square and color.
// Pawn moves and attacks coincide: forward one step, plus sideways
// once across the river.
func PawnAttacks(c Color, sq Square) Bitboard {
	return pawnAttacks[c][sq]
}

// Attacks returns the attack bitboard for any non-pawn piece type.
func Attacks(pt PieceType, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Rook:
		return RookAttacks(sq, occupied)
	case Cannon:
		return CannonAttacks(sq, occupied)
	case Knight:
		return KnightAttacks(sq, occupied)
	case Elephant:
		return ElephantAttacks(sq, occupied)
	case Advisor:
		return AdvisorAttacks(sq)
	case King:
		return KingAttacks(sq)
	}
	return EmptyBB
}

// Between returns the blocking squares for an attack from sq2 to sq1,
// including sq2 itself: strictly-between squares on a file or rank, or
// the leg square for a knight attack.
func Between(sq1, sq2 Square) Bitboard {
	return betweenBB[sq1][sq2]
}

// Line returns the full file or rank through two aligned squares, or
// empty if the squares are not orthogonally aligned.
func Line(sq1, sq2 Square) Bitboard {
	return lineBB[sq1][sq2]
}

// AttackersTo returns all pieces of both colors attacking a square.
// Kings contribute along open files and ranks (the flying-general rule);
// their one-step palace adjacency is subsumed by the rook ray.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	rook := RookAttacks(sq, occupied)
	att := rook.And(p.byType[Rook].Or(p.byType[King]))
	att = att.Or(CannonAttacks(sq, occupied).And(p.byType[Cannon]))
	att = att.Or(KnightAttackersTo(sq, occupied).And(p.byType[Knight]))
	att = att.Or(ElephantAttacks(sq, occupied).And(p.byType[Elephant]))
	att = att.Or(advisorAttacks[sq].And(p.byType[Advisor]))
	att = att.Or(pawnTargets[Red][sq].And(p.Pieces(Red, Pawn)))
	att = att.Or(pawnTargets[Black][sq].And(p.Pieces(Black, Pawn)))
	return att
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersTo(sq, p.Occupied()).And(p.byColor[byColor]).Any()
}
