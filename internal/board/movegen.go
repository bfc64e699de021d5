package board

// GenMode selects which moves Generate emits.
type GenMode uint8

const (
	// ModeCaptures emits all pseudo-legal captures.
	ModeCaptures GenMode = iota
	// ModeQuiets emits all pseudo-legal non-captures.
	ModeQuiets
	// ModePseudoLegal emits all pseudo-legal captures and non-captures.
	ModePseudoLegal
	// ModeEvasions emits check evasions; the side to move must be in check.
	ModeEvasions
	// ModeLegal emits exactly the legal moves. Order is unspecified.
	ModeLegal
)

// Generate appends the moves of the requested mode to ml and returns ml.
// The position is read-only. Calling ModeEvasions on a position not in
// check is a contract violation.
func (p *Position) Generate(mode GenMode, ml *MoveList) *MoveList {
	switch mode {
	case ModeEvasions:
		p.generateEvasions(ml)
	case ModeLegal:
		p.generateLegal(ml)
	default:
		p.generateAll(mode, ml)
	}
	return ml
}

// pieceOrder is the generation order for the non-king piece types.
var pieceOrder = [6]PieceType{Pawn, Elephant, Advisor, Knight, Cannon, Rook}

// generateNonKing emits moves of all non-king piece types against target.
// Cannons get their two disjoint shapes: screened captures and plain
// slides onto empty squares; for evasions both are clipped to target.
func (p *Position) generateNonKing(mode GenMode, target Bitboard, ml *MoveList) {
	us := p.sideToMove
	occupied := p.Occupied()

	for _, pt := range pieceOrder {
		bb := p.Pieces(us, pt)
		for bb.Any() {
			from := bb.PopLSB()
			var b Bitboard
			if pt == Cannon {
				if mode != ModeQuiets {
					b = CannonAttacks(from, occupied).And(p.byColor[us.Other()])
				}
				if mode != ModeCaptures {
					b = b.Or(RookAttacks(from, occupied).And(occupied.Not()))
				}
				if mode == ModeEvasions {
					b = b.And(target)
				}
			} else if pt == Pawn {
				b = PawnAttacks(us, from).And(target)
			} else {
				b = Attacks(pt, from, occupied).And(target)
			}
			for b.Any() {
				ml.Add(NewMove(from, b.PopLSB()))
			}
		}
	}
}

// generateAll emits captures, quiets or both, including king moves.
func (p *Position) generateAll(mode GenMode, ml *MoveList) {
	us := p.sideToMove
	var target Bitboard
	switch mode {
	case ModePseudoLegal:
		target = p.byColor[us].Not()
	case ModeCaptures:
		target = p.byColor[us.Other()]
	default: // ModeQuiets
		target = p.Occupied().Not()
	}

	p.generateNonKing(mode, target, ml)

	ksq := p.kingSq[us]
	b := KingAttacks(ksq).And(target)
	for b.Any() {
		ml.Add(NewMove(ksq, b.PopLSB()))
	}
}

// generateEvasions emits check evasions: blocks and captures of the sole
// checker, king steps off the checking line, and screen relocations when
// the checker is a cannon. Double checks fall back to the pseudo-legal
// superset; the legality filter is the safety net there.
func (p *Position) generateEvasions(ml *MoveList) {
	checkers := p.Checkers()

	if checkers.MoreThanOne() {
		p.generateAll(ModePseudoLegal, ml)
		return
	}

	us := p.sideToMove
	ksq := p.kingSq[us]
	checksq := checkers.LSB()
	pt := p.board[checksq].Type()

	// Block the check or capture the checking piece.
	target := Between(ksq, checksq).AndNot(p.byColor[us])
	p.generateNonKing(ModeEvasions, target, ml)

	// King steps. Squares still on a slider checker's line are known
	// illegal and are skipped up front, except the capture of the
	// checker itself.
	b := KingAttacks(ksq).AndNot(p.byColor[us])
	if pt == Rook || pt == Cannon {
		b = b.And(Line(checksq, ksq).Not().Or(p.byColor[us.Other()]))
	}
	for b.Any() {
		ml.Add(NewMove(ksq, b.PopLSB()))
	}

	// A cannon check can also be met by moving the screen piece off the
	// checking line.
	if pt == Cannon {
		hurdle := Between(ksq, checksq).And(p.byColor[us])
		if hurdle.Any() {
			hurdleSq := hurdle.PopLSB()
			occupied := p.Occupied()
			offLine := Line(checksq, hurdleSq).Not()
			switch hpt := p.board[hurdleSq].Type(); hpt {
			case Pawn:
				b = PawnAttacks(us, hurdleSq).And(offLine).AndNot(p.byColor[us])
			case Cannon:
				b = RookAttacks(hurdleSq, occupied).And(offLine).And(occupied.Not()).
					Or(CannonAttacks(hurdleSq, occupied).And(p.byColor[us.Other()]))
			default:
				b = Attacks(hpt, hurdleSq, occupied).And(offLine).AndNot(p.byColor[us])
			}
			for b.Any() {
				ml.Add(NewMove(hurdleSq, b.PopLSB()))
			}
		}
	}
}

// generateLegal emits evasions or pseudo-legal moves, then filters with
// the legality predicate by swap-removal. Surviving order is unstable.
func (p *Position) generateLegal(ml *MoveList) {
	if p.InCheck() {
		p.generateEvasions(ml)
	} else {
		p.generateAll(ModePseudoLegal, ml)
	}

	for i := 0; i < ml.count; {
		if p.Legal(ml.moves[i]) {
			i++
		} else {
			ml.count--
			ml.moves[i] = ml.moves[ml.count]
		}
	}
}
