package board

// Zobrist hash keys for position hashing.
// Uses a PRNG with fixed seed for reproducibility.
var (
	pieceKeys [PieceNB][SquareNB]uint64
	sideKey   uint64 // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x9E2C77A15D4B8F03) // Fixed seed

	for pc := Piece(0); pc < NoPiece; pc++ {
		for sq := A0; sq < NoSquare; sq++ {
			pieceKeys[pc][sq] = rng.next()
		}
	}

	sideKey = rng.next()
}

// computeKey hashes the full board from scratch.
func (p *Position) computeKey() uint64 {
	var key uint64
	occ := p.Occupied()
	for occ.Any() {
		sq := occ.PopLSB()
		key ^= pieceKeys[p.board[sq]][sq]
	}
	if p.sideToMove == Black {
		key ^= sideKey
	}
	return key
}

// ZobristPiece returns the Zobrist key for a piece on a square.
func ZobristPiece(pc Piece, sq Square) uint64 {
	return pieceKeys[pc][sq]
}

// ZobristSideToMove returns the Zobrist key for side to move.
func ZobristSideToMove() uint64 {
	return sideKey
}
