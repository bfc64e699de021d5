package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the Xiangqi starting position.
const StartFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"

// SetFEN resets the position from a FEN string. The history chain is
// discarded; the parsed setup becomes the new root record.
func (p *Position) SetFEN(fen string) error {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return fmt.Errorf("invalid FEN: need at least 2 fields, got %d", len(parts))
	}

	p.reset()
	p.fullMove = 1

	if err := p.parsePiecePlacement(parts[0]); err != nil {
		return err
	}

	switch parts[1] {
	case "w", "r":
		p.sideToMove = Red
	case "b":
		p.sideToMove = Black
	default:
		return fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Fields 2-4 (castling, en passant, half-move clock) carry no
	// information in Xiangqi FEN and are accepted but ignored.
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		p.fullMove = fmn
	}

	if p.kingSq[Red] == NoSquare || p.kingSq[Black] == NoSquare {
		return fmt.Errorf("invalid FEN: missing king")
	}

	p.finishSetup()
	return nil
}

// ParseFEN parses a FEN string and returns a new Position.
func ParseFEN(fen string) (*Position, error) {
	p := &Position{}
	if err := p.SetFEN(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func (p *Position) parsePiecePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != RankNB {
		return fmt.Errorf("invalid piece placement: need %d ranks, got %d", RankNB, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 9 - i // FEN lists Black's back rank first
		file := 0

		for _, c := range rankStr {
			if file > 8 {
				return fmt.Errorf("too many squares in rank %d", rank)
			}

			if c >= '1' && c <= '9' {
				file += int(c - '0')
			} else {
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				p.setPiece(NewSquare(file, rank), piece)
				file++
			}
		}

		if file != 9 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank, file)
		}
	}

	return nil
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 9; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 9; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == Red {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteString(" - - 0 ")
	sb.WriteString(strconv.Itoa(p.fullMove))

	return sb.String()
}
