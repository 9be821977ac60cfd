package shogi

import "testing"

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 30},
		{2, 900},
		{3, 25470},
		// Depth 4 takes longer, enable for thorough testing:
		// {4, 719731},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := pos.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftRestoresPosition checks that make/unmake leaves no trace.
func TestPerftRestoresPosition(t *testing.T) {
	pos := NewPosition()
	before := pos.SFEN()
	pos.Perft(3)
	if after := pos.SFEN(); after != before {
		t.Errorf("position changed by perft:\n got %s\nwant %s", after, before)
	}
}

// TestPawnDropMate checks that a pawn drop delivering mate is not generated.
func TestPawnDropMate(t *testing.T) {
	// Gote king 1a, Gote knights on 2a and 2b block escape, Sente gold on 2c
	// protects 1b. Sente holds a pawn, so P*1b would be mate.
	pos, err := ParseSFEN("7nk/7n1/7G1/9/9/9/9/9/K8 b P 1")
	if err != nil {
		t.Fatalf("Failed to parse SFEN: %v", err)
	}

	drop := NewDrop(Pawn, mustSquare(t, "1b"))
	moves := pos.GenerateLegalMoves()
	if moves.Contains(drop) {
		t.Errorf("pawn drop mate %s should be illegal", drop)
	}

	// Any other pawn drop is fine
	other := NewDrop(Pawn, mustSquare(t, "5e"))
	if !moves.Contains(other) {
		t.Errorf("expected %s to be legal", other)
	}
}

// TestTwoPawnRule checks that pawns cannot be dropped on a file that already
// holds an unpromoted pawn of the same side.
func TestTwoPawnRule(t *testing.T) {
	pos, err := ParseSFEN("4k4/9/9/9/9/9/4P4/9/4K4 b P 1")
	if err != nil {
		t.Fatalf("Failed to parse SFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	if moves.Contains(NewDrop(Pawn, mustSquare(t, "5e"))) {
		t.Error("pawn drop on a file with an own pawn should be illegal")
	}
	if !moves.Contains(NewDrop(Pawn, mustSquare(t, "4e"))) {
		t.Error("pawn drop on 4e should be legal")
	}
	if moves.Contains(NewDrop(Pawn, mustSquare(t, "4a"))) {
		t.Error("pawn drop on the last rank should be illegal")
	}
}

// TestForcedPromotion checks that a pawn reaching the last rank must promote.
func TestForcedPromotion(t *testing.T) {
	pos, err := ParseSFEN("k8/4P4/9/9/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatalf("Failed to parse SFEN: %v", err)
	}

	from, to := mustSquare(t, "5b"), mustSquare(t, "5a")
	moves := pos.GenerateLegalMoves()
	if moves.Contains(NewMove(from, to)) {
		t.Error("non-promoting pawn move to the last rank should be illegal")
	}
	if !moves.Contains(NewPromotion(from, to)) {
		t.Error("promoting pawn move should be legal")
	}
}

func TestMakeUnmakeDirtyPiece(t *testing.T) {
	pos, err := ParseSFEN("4k4/9/4p4/9/9/9/4R4/9/4K4 b - 1")
	if err != nil {
		t.Fatalf("Failed to parse SFEN: %v", err)
	}
	before := pos.SFEN()

	m, err := ParseMove("5g5c+", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	undo := pos.MakeMove(m)

	if pos.Dirty.Len() != 2 {
		t.Fatalf("dirty entries = %d, want 2", pos.Dirty.Len())
	}
	mover := pos.Dirty.At(0)
	if mover.Role != RoleMover || mover.Piece != NewPiece(Rook, Sente) || mover.Result != NewPiece(Dragon, Sente) {
		t.Errorf("unexpected mover entry %+v", *mover)
	}
	captured := pos.Dirty.At(1)
	if captured.Role != RoleCaptured || captured.Piece != NewPiece(Pawn, Gote) ||
		captured.Result != NewPiece(Pawn, Sente) || !captured.To.IsHand() {
		t.Errorf("unexpected captured entry %+v", *captured)
	}
	if pos.HandCount(Sente, Pawn) != 1 {
		t.Errorf("Sente pawns in hand = %d, want 1", pos.HandCount(Sente, Pawn))
	}

	pos.UnmakeMove(m, undo)
	if after := pos.SFEN(); after != before {
		t.Errorf("unmake: got %s, want %s", after, before)
	}
}

func TestSFENRoundTrip(t *testing.T) {
	sfens := []string{
		StartSFEN,
		"lnsgk2nl/1r4gs1/p1pppp1pp/6p2/1p7/2P6/PPSPPPPPP/7R1/LN1GKGSNL b Bb 13",
		"8l/1l+R2P3/p2pBG1pp/kps1p4/Nn1P2G2/P1P1P2PP/1PS6/1KSG3+r1/LN2+p3L w Sbgn3p 124",
	}
	for _, s := range sfens {
		pos, err := ParseSFEN(s)
		if err != nil {
			t.Fatalf("ParseSFEN(%q): %v", s, err)
		}
		if got := pos.SFEN(); got != s {
			t.Errorf("round trip:\n got %s\nwant %s", got, s)
		}
	}
}

func TestParseSFENErrors(t *testing.T) {
	bad := []string{
		"",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1 b - 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL x - 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSG1GSNL b - 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b 2 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSN+ b - 1",
	}
	for _, s := range bad {
		if _, err := ParseSFEN(s); err == nil {
			t.Errorf("ParseSFEN(%q) succeeded, want error", s)
		}
	}
}

func TestMoveStrings(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"7g7f", "2h2g", "8h2b+"} {
		m, err := ParseMove(s, pos)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		if m.String() != s {
			t.Errorf("String() = %q, want %q", m.String(), s)
		}
	}

	drop := NewDrop(Silver, mustSquare(t, "5e"))
	if drop.String() != "S*5e" {
		t.Errorf("drop String() = %q, want S*5e", drop.String())
	}
	if !drop.IsDrop() || drop.DropType() != Silver || drop.To() != mustSquare(t, "5e") {
		t.Errorf("drop decoded wrongly: %v %v %v", drop.IsDrop(), drop.DropType(), drop.To())
	}
}

func TestSquareGeometry(t *testing.T) {
	for sq := Square(0); sq < NoSquare; sq++ {
		if sq.Rotate().Rotate() != sq {
			t.Fatalf("rotate is not an involution at %s", sq)
		}
		parsed, err := ParseSquare(sq.String())
		if err != nil || parsed != sq {
			t.Fatalf("ParseSquare(%s) = %d, %v", sq, parsed, err)
		}
	}
	if s := NewSquare(0, 0).String(); s != "9i" {
		t.Errorf("square 0 = %s, want 9i", s)
	}
	if s := NewSquare(8, 8).String(); s != "1a" {
		t.Errorf("square 80 = %s, want 1a", s)
	}
}

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return sq
}
