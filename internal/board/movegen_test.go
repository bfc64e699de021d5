package board

import (
	"sort"
	"testing"
)

func moveStrings(ml *MoveList) []string {
	out := make([]string, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		out = append(out, ml.Get(i).String())
	}
	sort.Strings(out)
	return out
}

func moveSet(ml *MoveList) map[Move]bool {
	s := make(map[Move]bool, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		s[ml.Get(i)] = true
	}
	return s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStartingMoveCount(t *testing.T) {
	pos := NewPosition()

	pseudo := pos.Generate(ModePseudoLegal, NewMoveList())
	if pseudo.Len() != 44 {
		t.Errorf("pseudo-legal move count = %d, want 44", pseudo.Len())
	}

	legal := pos.Generate(ModeLegal, NewMoveList())
	if legal.Len() != 44 {
		t.Errorf("legal move count = %d, want 44", legal.Len())
	}
}

// TestModePartition checks that captures and quiets partition the
// pseudo-legal move set, with the cannon's two shapes landing on the
// correct side of the split.
func TestModePartition(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2C4/9/RNBAKABNR b - - 0 1",
		"r1bakabr1/9/1cn3nc1/p1p1p1p1p/9/2P6/P3P1P1P/1C2C1N2/9/RNBAKAB1R b - - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}

			captures := pos.Generate(ModeCaptures, NewMoveList())
			quiets := pos.Generate(ModeQuiets, NewMoveList())
			pseudo := pos.Generate(ModePseudoLegal, NewMoveList())

			if captures.Len()+quiets.Len() != pseudo.Len() {
				t.Fatalf("captures(%d) + quiets(%d) != pseudo-legal(%d)",
					captures.Len(), quiets.Len(), pseudo.Len())
			}

			all := moveSet(pseudo)
			for i := 0; i < captures.Len(); i++ {
				m := captures.Get(i)
				if !all[m] {
					t.Errorf("capture %v not in pseudo-legal set", m)
				}
				if !m.IsCapture(pos) {
					t.Errorf("move %v generated as capture but lands on empty square", m)
				}
			}
			for i := 0; i < quiets.Len(); i++ {
				m := quiets.Get(i)
				if !all[m] {
					t.Errorf("quiet %v not in pseudo-legal set", m)
				}
				if m.IsCapture(pos) {
					t.Errorf("move %v generated as quiet but captures", m)
				}
			}
		})
	}
}

// TestLegalMovesSafe checks that every legal move really leaves the
// mover's king safe, and that the list holds no duplicates.
func TestLegalMovesSafe(t *testing.T) {
	fens := []string{
		StartFEN,
		"4k4/9/9/9/4R4/9/9/9/9/4K4 b - - 0 1",
		"4k4/9/9/4p4/4C4/9/9/9/9/3K5 b - - 0 1",
		"r1bakabr1/9/1cn3nc1/p1p1p1p1p/9/2P6/P3P1P1P/1C2C1N2/9/RNBAKAB1R b - - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}

			legal := pos.Generate(ModeLegal, NewMoveList())
			seen := make(map[Move]bool)
			us := pos.SideToMove()
			for i := 0; i < legal.Len(); i++ {
				m := legal.Get(i)
				if seen[m] {
					t.Errorf("duplicate move %v", m)
				}
				seen[m] = true

				pos.MakeMove(m)
				ksq := pos.KingSquare(us)
				if pos.AttackersTo(ksq, pos.Occupied()).And(pos.PiecesByColor(us.Other())).Any() {
					t.Errorf("move %v leaves own king attacked", m)
				}
				pos.UnmakeMove()
			}
		})
	}
}

// TestRookCheckEvasions: a lone rook checks along the king's file. The
// king may step off the line but not slide along it; the squares still
// aligned with the checker are excluded up front.
func TestRookCheckEvasions(t *testing.T) {
	pos, err := ParseFEN("4k4/9/9/9/4R4/9/9/9/9/4K4 b - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	if !pos.InCheck() {
		t.Fatal("position should be in check")
	}

	evasions := pos.Generate(ModeEvasions, NewMoveList())
	checksq := pos.Checkers().LSB()
	ksq := pos.KingSquare(Black)
	for i := 0; i < evasions.Len(); i++ {
		m := evasions.Get(i)
		if m.From() != ksq {
			continue
		}
		onLine := Line(checksq, ksq).IsSet(m.To())
		if onLine && m.To() != checksq {
			t.Errorf("king evasion %v stays on the checking line", m)
		}
	}

	legal := pos.Generate(ModeLegal, NewMoveList())
	want := []string{"e9d9", "e9f9"}
	if got := moveStrings(legal); !equalStrings(got, want) {
		t.Errorf("legal moves = %v, want %v", got, want)
	}
}

// TestCannonCheckScreenCapture: a cannon checks through a single pawn
// screen; the pawn can capture the cannon, collapsing the line.
func TestCannonCheckScreenCapture(t *testing.T) {
	pos, err := ParseFEN("4k4/9/9/4p4/4C4/9/9/9/9/3K5 b - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	if !pos.InCheck() {
		t.Fatal("position should be in check")
	}

	legal := pos.Generate(ModeLegal, NewMoveList())
	want := []string{"e6e5", "e9f9"}
	if got := moveStrings(legal); !equalStrings(got, want) {
		t.Errorf("legal moves = %v, want %v", got, want)
	}
}

// TestCannonCheckScreenRelocation: the screen is a knight, which can
// jump off the checking line in six ways; the king has one flight
// square (the other is barred by the flying-general rule).
func TestCannonCheckScreenRelocation(t *testing.T) {
	pos, err := ParseFEN("4k4/9/9/4n4/4C4/9/9/9/9/3K5 b - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	if !pos.InCheck() {
		t.Fatal("position should be in check")
	}

	legal := pos.Generate(ModeLegal, NewMoveList())
	want := []string{"e6c5", "e6c7", "e6d8", "e6f8", "e6g5", "e6g7", "e9f9"}
	if got := moveStrings(legal); !equalStrings(got, want) {
		t.Errorf("legal moves = %v, want %v", got, want)
	}

	// Every generated screen relocation must leave the checking file.
	evasions := pos.Generate(ModeEvasions, NewMoveList())
	checksq := pos.Checkers().LSB()
	for i := 0; i < evasions.Len(); i++ {
		m := evasions.Get(i)
		if sq, _ := ParseSquare("e6"); m.From() == sq {
			if Line(checksq, m.From()).IsSet(m.To()) {
				t.Errorf("screen relocation %v stays on the checking line", m)
			}
		}
	}
}

// TestDoubleCheckFallback: with two checkers the evasion generator
// degrades to the pseudo-legal superset and leans on the legality filter.
func TestDoubleCheckFallback(t *testing.T) {
	pos, err := ParseFEN("4k4/9/3N5/9/4R4/9/9/9/9/4K4 b - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	if !pos.Checkers().MoreThanOne() {
		t.Fatal("position should be a double check")
	}

	evasions := pos.Generate(ModeEvasions, NewMoveList())
	pseudo := moveSet(pos.Generate(ModePseudoLegal, NewMoveList()))
	for i := 0; i < evasions.Len(); i++ {
		if m := evasions.Get(i); !pseudo[m] {
			t.Errorf("evasion %v not in pseudo-legal superset", m)
		}
	}

	legal := pos.Generate(ModeLegal, NewMoveList())
	want := []string{"e9d9", "e9f9"}
	if got := moveStrings(legal); !equalStrings(got, want) {
		t.Errorf("legal moves = %v, want %v", got, want)
	}
}

// TestEvasionsMatchLegalInCheck: filtering evasions through the legality
// predicate must give exactly the legal move set.
func TestEvasionsMatchLegalInCheck(t *testing.T) {
	fens := []string{
		"4k4/9/9/9/4R4/9/9/9/9/4K4 b - - 0 1",
		"4k4/9/9/4p4/4C4/9/9/9/9/3K5 b - - 0 1",
		"4k4/9/9/4n4/4C4/9/9/9/9/3K5 b - - 0 1",
		"4k4/9/3N5/9/4R4/9/9/9/9/4K4 b - - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("Failed to parse FEN: %v", err)
			}
			if !pos.InCheck() {
				t.Fatal("position should be in check")
			}

			evasions := pos.Generate(ModeEvasions, NewMoveList())
			filtered := NewMoveList()
			for i := 0; i < evasions.Len(); i++ {
				if m := evasions.Get(i); pos.Legal(m) {
					filtered.Add(m)
				}
			}

			legal := pos.Generate(ModeLegal, NewMoveList())
			if got, want := moveStrings(filtered), moveStrings(legal); !equalStrings(got, want) {
				t.Errorf("filtered evasions = %v, legal = %v", got, want)
			}
		})
	}
}
