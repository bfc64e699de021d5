package features

import (
	"testing"

	"github.com/hezhaoyun/xqengine/internal/board"
)

func TestMakeBucketsStartPosition(t *testing.T) {
	pos := board.NewPosition()

	for _, c := range []board.Color{board.Red, board.Black} {
		b := MakeBuckets(pos, c)
		if b.King != 0 {
			t.Errorf("%v king bucket = %d, want 0 (king on center file, back rank)", c, b.King)
		}
		if b.Mirror {
			t.Errorf("%v mirror set for a center-file king", c)
		}
		// Two rooks and two cannons each side: capped at the top bucket.
		if b.Attack != AttackBuckets-1 {
			t.Errorf("%v attack bucket = %d, want %d", c, b.Attack, AttackBuckets-1)
		}
	}
}

func TestKingBucketCells(t *testing.T) {
	cases := []struct {
		sq     string
		bucket int
		mirror bool
	}{
		{"e0", 0, false},
		{"d0", 1, false},
		{"f0", 1, true},
		{"e1", 2, false},
		{"d1", 3, false},
		{"f1", 3, true},
		{"e2", 4, false},
		{"d2", 5, false},
		{"f2", 5, true},
	}

	for _, tc := range cases {
		t.Run(tc.sq, func(t *testing.T) {
			sq, err := board.ParseSquare(tc.sq)
			if err != nil {
				t.Fatal(err)
			}
			pos, err := board.ParseFEN(positionWithRedKing(t, sq))
			if err != nil {
				t.Fatal(err)
			}

			b := MakeBuckets(pos, board.Red)
			if b.King != tc.bucket || b.Mirror != tc.mirror {
				t.Errorf("king on %s: bucket=%d mirror=%v, want bucket=%d mirror=%v",
					tc.sq, b.King, b.Mirror, tc.bucket, tc.mirror)
			}
		})
	}
}

// positionWithRedKing builds a minimal FEN with the red king on sq and the
// black king on e9.
func positionWithRedKing(t *testing.T, sq board.Square) string {
	t.Helper()
	ranks := make([][]byte, 10)
	for r := range ranks {
		ranks[r] = []byte("         ")
	}
	ranks[sq.Rank()][sq.File()] = 'K'
	ranks[9][4] = 'k'

	fen := ""
	for r := 9; r >= 0; r-- {
		if r < 9 {
			fen += "/"
		}
		empty := 0
		for f := 0; f < 9; f++ {
			if ranks[r][f] == ' ' {
				empty++
				continue
			}
			if empty > 0 {
				fen += string(rune('0' + empty))
				empty = 0
			}
			fen += string(ranks[r][f])
		}
		if empty > 0 {
			fen += string(rune('0' + empty))
		}
	}
	return fen + " w - - 0 1"
}

func TestOrientSquare(t *testing.T) {
	e3, _ := board.ParseSquare("e3")
	e6, _ := board.ParseSquare("e6")

	if got := OrientSquare(board.Red, false, e3); got != e3 {
		t.Errorf("red orientation should be identity, got %v", got)
	}
	if got := OrientSquare(board.Black, false, e6); got != e3 {
		t.Errorf("black orientation of e6 = %v, want e3", got)
	}

	a0, _ := board.ParseSquare("a0")
	i0, _ := board.ParseSquare("i0")
	if got := OrientSquare(board.Red, true, a0); got != i0 {
		t.Errorf("mirrored a0 = %v, want i0", got)
	}
}

func TestMakeIndexPerspectiveSymmetry(t *testing.T) {
	pos := board.NewPosition()
	redB := MakeBuckets(pos, board.Red)
	blackB := MakeBuckets(pos, board.Black)

	// The start position is symmetric: a red pawn seen by Red must map
	// to the same index as the rotated black pawn seen by Black.
	e3, _ := board.ParseSquare("e3")
	e6, _ := board.ParseSquare("e6")

	ri := MakeIndex(board.Red, redB, board.RedPawn, e3)
	bi := MakeIndex(board.Black, blackB, board.BlackPawn, e6)
	if ri != bi {
		t.Errorf("symmetric pawn indices differ: red %d, black %d", ri, bi)
	}
}

func TestAppendActiveIndices(t *testing.T) {
	pos := board.NewPosition()
	b := MakeBuckets(pos, board.Red)

	var active IndexList
	AppendActiveIndices(pos, board.Red, b, &active)

	if active.Size != 32 {
		t.Fatalf("active features = %d, want 32", active.Size)
	}

	lo := b.Weight() * BlockDimensions
	hi := lo + BlockDimensions
	seen := make(map[int]bool)
	for _, idx := range active.Slice() {
		if idx < lo || idx >= hi {
			t.Errorf("index %d outside bucket range [%d, %d)", idx, lo, hi)
		}
		if seen[idx] {
			t.Errorf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestAppendChangedIndices(t *testing.T) {
	pos := board.NewPosition()
	b := MakeBuckets(pos, board.Red)

	b2, _ := board.ParseSquare("b2")
	e2, _ := board.ParseSquare("e2")

	quiet := board.DirtyPiece{
		Num:   1,
		Piece: [2]board.Piece{board.RedCannon},
		From:  [2]board.Square{b2},
		To:    [2]board.Square{e2},
	}
	var removed, added IndexList
	AppendChangedIndices(board.Red, b, quiet, &removed, &added)
	if removed.Size != 1 || added.Size != 1 {
		t.Errorf("quiet move: removed=%d added=%d, want 1/1", removed.Size, added.Size)
	}

	capture := board.DirtyPiece{
		Num:   2,
		Piece: [2]board.Piece{board.RedCannon, board.BlackKnight},
		From:  [2]board.Square{b2, e2},
		To:    [2]board.Square{e2, board.NoSquare},
	}
	removed.Clear()
	added.Clear()
	AppendChangedIndices(board.Red, b, capture, &removed, &added)
	if removed.Size != 2 || added.Size != 1 {
		t.Errorf("capture: removed=%d added=%d, want 2/1", removed.Size, added.Size)
	}
}

func TestAttackBucket(t *testing.T) {
	cases := []struct {
		fen    string
		want   int // red's attack bucket, counting black line pieces
	}{
		{"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1", 5},
		{"1nbakabn1/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1", 2},
		{"rnbakabnr/9/9/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1", 4},
		{"4k4/9/9/9/9/9/9/9/9/4K4 w - - 0 1", 0},
	}

	for _, tc := range cases {
		pos, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := AttackBucket(pos, board.Red); got != tc.want {
			t.Errorf("%s: attack bucket = %d, want %d", tc.fen, got, tc.want)
		}
	}
}
