package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"4k4/9/9/9/4R4/9/9/9/9/4K4 b - - 0 1",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2C4/9/RNBAKABNR b - - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Errorf("FEN round trip = %q, want %q", got, fen)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbakabnr/9/1c5c1 w",
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR x - - 0 1",
		"rnbaqabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1",
		"9/9/9/9/9/9/9/9/9/9 w - - 0 1", // no kings
	}

	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) succeeded, want error", fen)
		}
	}
}

func TestMakeUnmakeRestores(t *testing.T) {
	pos := NewPosition()
	startFEN := pos.FEN()
	startKey := pos.Key()

	moves := pos.Generate(ModeLegal, NewMoveList())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		pos.MakeMove(m)
		if pos.Key() == startKey {
			t.Errorf("key unchanged after %v", m)
		}
		pos.UnmakeMove()
		if got := pos.FEN(); got != startFEN {
			t.Fatalf("after %v: FEN = %q, want %q", m, got, startFEN)
		}
		if pos.Key() != startKey {
			t.Fatalf("after %v: key = %x, want %x", m, pos.Key(), startKey)
		}
		if pos.Ply() != 0 {
			t.Fatalf("after %v: ply = %d, want 0", m, pos.Ply())
		}
	}
}

func TestZobristIncremental(t *testing.T) {
	pos := NewPosition()

	// Walk a short line and verify the incremental key against a full
	// recomputation at every node.
	line := []string{"b2e2", "h9g7", "h0g2", "i9h9", "h2h6", "c6c5"}
	for _, ms := range line {
		m, err := ParseMove(ms)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", ms, err)
		}
		pos.MakeMove(m)
		if pos.Key() != pos.computeKey() {
			t.Fatalf("after %s: incremental key %x != recomputed %x", ms, pos.Key(), pos.computeKey())
		}
	}
	for range line {
		pos.UnmakeMove()
		if pos.Key() != pos.computeKey() {
			t.Fatalf("after unmake: incremental key %x != recomputed %x", pos.Key(), pos.computeKey())
		}
	}
}

func TestDirtyPieceDelta(t *testing.T) {
	pos := NewPosition()

	m, _ := ParseMove("b2e2")
	pos.MakeMove(m)
	dp := pos.LastDirty()
	if dp.Num != 1 {
		t.Fatalf("quiet move dirty num = %d, want 1", dp.Num)
	}
	if dp.Piece[0] != RedCannon || dp.From[0].String() != "b2" || dp.To[0].String() != "e2" {
		t.Errorf("dirty delta = %+v", dp)
	}
	pos.UnmakeMove()

	// A capture records the captured piece with To == NoSquare.
	pos2, err := ParseFEN("4k4/9/9/4p4/4C4/9/9/9/9/3K5 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	cap, _ := ParseMove("e6e5")
	pos2.MakeMove(cap)
	dp = pos2.LastDirty()
	if dp.Num != 2 {
		t.Fatalf("capture dirty num = %d, want 2", dp.Num)
	}
	if dp.Piece[1] != RedCannon || dp.To[1] != NoSquare {
		t.Errorf("captured delta = %+v", dp)
	}
}

func TestFlyingGeneralLegality(t *testing.T) {
	// Kings on the d- and e-files; stepping the black king to d9 would
	// face the red king on d0 across an open file.
	pos, err := ParseFEN("4k4/9/9/4p4/4C4/9/9/9/9/3K5 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	m, _ := ParseMove("e9d9")
	if pos.Legal(m) {
		t.Error("e9d9 should be illegal: flying general")
	}
	m, _ = ParseMove("e9f9")
	if !pos.Legal(m) {
		t.Error("e9f9 should be legal")
	}
}

func TestCheckersTracking(t *testing.T) {
	pos := NewPosition()
	if pos.InCheck() {
		t.Fatal("starting position should not be in check")
	}

	pos2, err := ParseFEN("4k4/9/9/9/4R4/9/9/9/9/4K4 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !pos2.InCheck() {
		t.Fatal("rook on the king's file should give check")
	}
	if pos2.Checkers().Count() != 1 {
		t.Errorf("checkers count = %d, want 1", pos2.Checkers().Count())
	}
	if got := pos2.Checkers().LSB().String(); got != "e5" {
		t.Errorf("checker square = %s, want e5", got)
	}

	// Stepping aside leaves no check on the next side to move.
	m, _ := ParseMove("e9f9")
	pos2.MakeMove(m)
	if pos2.InCheck() {
		t.Error("red should not be in check after e9f9")
	}
}
