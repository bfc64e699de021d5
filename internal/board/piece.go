package board

// Color represents the color of a piece or player.
type Color uint8

const (
	Red Color = iota
	Black
	NoColor Color = 2
)

// ColorNB is the number of playing colors.
const ColorNB = 2

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a Xiangqi piece.
type PieceType uint8

const (
	Rook PieceType = iota
	Knight
	Cannon
	Elephant
	Advisor
	Pawn
	King
	NoPieceType PieceType = 7
)

// PieceTypeNB is the number of piece types.
const PieceTypeNB = 7

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Rook:
		return "Rook"
	case Knight:
		return "Knight"
	case Cannon:
		return "Cannon"
	case Elephant:
		return "Elephant"
	case Advisor:
		return "Advisor"
	case Pawn:
		return "Pawn"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'r', 'n', 'c', 'b', 'a', 'p', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return chars[pt]
}

// PieceValue returns the material value of the piece type in centipawns.
var PieceValue = [8]int{1000, 450, 500, 200, 200, 100, 20000, 0}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType + color*7
type Piece uint8

const (
	RedRook       Piece = Piece(Rook) + Piece(Red)*7
	RedKnight     Piece = Piece(Knight) + Piece(Red)*7
	RedCannon     Piece = Piece(Cannon) + Piece(Red)*7
	RedElephant   Piece = Piece(Elephant) + Piece(Red)*7
	RedAdvisor    Piece = Piece(Advisor) + Piece(Red)*7
	RedPawn       Piece = Piece(Pawn) + Piece(Red)*7
	RedKing       Piece = Piece(King) + Piece(Red)*7
	BlackRook     Piece = Piece(Rook) + Piece(Black)*7
	BlackKnight   Piece = Piece(Knight) + Piece(Black)*7
	BlackCannon   Piece = Piece(Cannon) + Piece(Black)*7
	BlackElephant Piece = Piece(Elephant) + Piece(Black)*7
	BlackAdvisor  Piece = Piece(Advisor) + Piece(Black)*7
	BlackPawn     Piece = Piece(Pawn) + Piece(Black)*7
	BlackKing     Piece = Piece(King) + Piece(Black)*7
	NoPiece       Piece = 14
)

// PieceNB is the number of distinct colored pieces.
const PieceNB = 14

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*7
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 7)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 7)
}

// String returns the FEN character for the piece.
// Uppercase for red, lowercase for black.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	chars := "RNCBAPKrncbapk"
	return string(chars[p])
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'R':
		return RedRook
	case 'N', 'H':
		return RedKnight
	case 'C':
		return RedCannon
	case 'B', 'E':
		return RedElephant
	case 'A':
		return RedAdvisor
	case 'P':
		return RedPawn
	case 'K':
		return RedKing
	case 'r':
		return BlackRook
	case 'n', 'h':
		return BlackKnight
	case 'c':
		return BlackCannon
	case 'b', 'e':
		return BlackElephant
	case 'a':
		return BlackAdvisor
	case 'p':
		return BlackPawn
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
