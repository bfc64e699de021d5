package board

// DirtyPiece records the piece placement delta of one move: at most one
// moved piece and one captured piece. A captured piece has To == NoSquare.
type DirtyPiece struct {
	Num   int
	Piece [2]Piece
	From  [2]Square
	To    [2]Square
}

// StateInfo is one record of the position's history chain. Records are
// appended on make and truncated on unmake; older records are never
// mutated once a successor exists.
type StateInfo struct {
	Key      uint64
	Checkers Bitboard
	Move     Move
	Captured Piece
	Dirty    DirtyPiece
}

// Position holds a Xiangqi board state and its history chain.
type Position struct {
	byType  [PieceTypeNB]Bitboard
	byColor [ColorNB]Bitboard
	board   [SquareNB]Piece

	kingSq     [ColorNB]Square
	sideToMove Color
	fullMove   int
	key        uint64

	// History arena: st[0] is the root setup, one record per made move
	// after it. Previous/next are index adjacency, unmake is truncation.
	st []StateInfo
}

// NewPosition creates a position set to the standard starting setup.
func NewPosition() *Position {
	p := &Position{}
	if err := p.SetFEN(StartFEN); err != nil {
		panic(err)
	}
	return p
}

// reset clears all board state before a FEN setup.
func (p *Position) reset() {
	st := p.st[:0]
	*p = Position{st: st}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
	p.kingSq[Red] = NoSquare
	p.kingSq[Black] = NoSquare
}

// finishSetup computes the root history record after piece placement.
func (p *Position) finishSetup() {
	p.key = p.computeKey()
	p.st = append(p.st, StateInfo{
		Key:      p.key,
		Checkers: p.computeCheckers(),
	})
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	return p.sideToMove
}

// Pieces returns the bitboard of pieces of the given color and type.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	return p.byColor[c].And(p.byType[pt])
}

// PiecesByType returns the bitboard of pieces of the given type, both colors.
func (p *Position) PiecesByType(pt PieceType) Bitboard {
	return p.byType[pt]
}

// PiecesByColor returns the bitboard of all pieces of the given color.
func (p *Position) PiecesByColor(c Color) Bitboard {
	return p.byColor[c]
}

// Occupied returns the bitboard of all pieces.
func (p *Position) Occupied() Bitboard {
	return p.byColor[Red].Or(p.byColor[Black])
}

// PieceCount returns the total number of pieces on the board.
func (p *Position) PieceCount() int {
	return p.Occupied().Count()
}

// KingSquare returns the king square of the given color.
func (p *Position) KingSquare(c Color) Square {
	return p.kingSq[c]
}

// PieceAt returns the piece on the given square, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.board[sq]
}

// IsEmpty returns true if the square holds no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.board[sq] == NoPiece
}

// Key returns the zobrist hash of the current position.
func (p *Position) Key() uint64 {
	return p.key
}

// Checkers returns the bitboard of pieces checking the side to move.
func (p *Position) Checkers() Bitboard {
	return p.st[len(p.st)-1].Checkers
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers().Any()
}

// Ply returns the index of the current history record, 0 at the root.
func (p *Position) Ply() int {
	return len(p.st) - 1
}

// LastDirty returns the piece delta of the most recent move.
// Valid only when Ply() > 0.
func (p *Position) LastDirty() DirtyPiece {
	return p.st[len(p.st)-1].Dirty
}

// LastMove returns the most recent move, or NoMove at the root.
func (p *Position) LastMove() Move {
	return p.st[len(p.st)-1].Move
}

func (p *Position) setPiece(sq Square, pc Piece) {
	p.board[sq] = pc
	p.byType[pc.Type()].Set(sq)
	p.byColor[pc.Color()].Set(sq)
	if pc.Type() == King {
		p.kingSq[pc.Color()] = sq
	}
}

func (p *Position) removePiece(sq Square, pc Piece) {
	p.board[sq] = NoPiece
	p.byType[pc.Type()].Clear(sq)
	p.byColor[pc.Color()].Clear(sq)
}

// computeCheckers returns the enemy pieces attacking the side to move's king.
func (p *Position) computeCheckers() Bitboard {
	ksq := p.kingSq[p.sideToMove]
	if ksq == NoSquare {
		return EmptyBB
	}
	return p.AttackersTo(ksq, p.Occupied()).And(p.byColor[p.sideToMove.Other()])
}

// MakeMove applies a pseudo-legal move, appending a new history record.
// Legality is the caller's concern; use Legal or generate with ModeLegal.
func (p *Position) MakeMove(m Move) {
	us := p.sideToMove
	from, to := m.From(), m.To()
	pc := p.board[from]
	captured := p.board[to]

	dp := DirtyPiece{Num: 1}
	dp.Piece[0] = pc
	dp.From[0] = from
	dp.To[0] = to

	key := p.key
	if captured != NoPiece {
		dp.Num = 2
		dp.Piece[1] = captured
		dp.From[1] = to
		dp.To[1] = NoSquare
		p.removePiece(to, captured)
		key ^= pieceKeys[captured][to]
	}
	p.removePiece(from, pc)
	p.setPiece(to, pc)
	key ^= pieceKeys[pc][from] ^ pieceKeys[pc][to] ^ sideKey

	p.sideToMove = us.Other()
	if p.sideToMove == Red {
		p.fullMove++
	}
	p.key = key

	p.st = append(p.st, StateInfo{
		Key:      key,
		Checkers: p.computeCheckers(),
		Move:     m,
		Captured: captured,
		Dirty:    dp,
	})
}

// UnmakeMove retracts the most recent move, truncating the history chain.
func (p *Position) UnmakeMove() {
	last := p.st[len(p.st)-1]
	p.st = p.st[:len(p.st)-1]

	m := last.Move
	from, to := m.From(), m.To()
	pc := p.board[to]

	p.removePiece(to, pc)
	p.setPiece(from, pc)
	if last.Captured != NoPiece {
		p.setPiece(to, last.Captured)
	}

	p.sideToMove = p.sideToMove.Other()
	if p.sideToMove == Black {
		p.fullMove--
	}
	p.key = p.st[len(p.st)-1].Key
}

// Legal reports whether a pseudo-legal move leaves the mover's own king
// safe, including the flying-general facing rule.
func (p *Position) Legal(m Move) bool {
	us := p.sideToMove
	from, to := m.From(), m.To()
	pc := p.board[from]
	captured := p.board[to]

	if captured != NoPiece {
		p.removePiece(to, captured)
	}
	p.removePiece(from, pc)
	p.setPiece(to, pc)

	ksq := p.kingSq[us]
	ok := !p.AttackersTo(ksq, p.Occupied()).And(p.byColor[us.Other()]).Any()

	p.removePiece(to, pc)
	p.setPiece(from, pc)
	if captured != NoPiece {
		p.setPiece(to, captured)
	}

	return ok
}
