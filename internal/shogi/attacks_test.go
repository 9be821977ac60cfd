package shogi

import "testing"

func TestStepAttacks(t *testing.T) {
	tests := []struct {
		c    Color
		pt   PieceType
		sq   string
		want int
	}{
		{Sente, Pawn, "5e", 1},
		{Sente, Knight, "5e", 2},
		{Sente, Silver, "5e", 5},
		{Sente, Gold, "5e", 6},
		{Gote, Gold, "5e", 6},
		{Sente, ProPawn, "5e", 6},
		{Sente, King, "5e", 8},
		{Sente, Gold, "5a", 3},
		{Gote, Gold, "5i", 3},
		{Sente, Knight, "5b", 0},
		{Sente, King, "1i", 3},
	}

	for _, tc := range tests {
		t.Run(tc.c.String()+" "+tc.pt.String()+" "+tc.sq, func(t *testing.T) {
			got := StepAttacks(tc.c, tc.pt, mustSquare(t, tc.sq)).PopCount()
			if got != tc.want {
				t.Errorf("%s %s attacks from %s: %d squares, want %d", tc.c, tc.pt, tc.sq, got, tc.want)
			}
		})
	}
}

func TestStepAttacksDirection(t *testing.T) {
	sq := mustSquare(t, "5e")
	if !StepAttacks(Sente, Pawn, sq).IsSet(mustSquare(t, "5d")) {
		t.Error("sente pawn on 5e does not attack 5d")
	}
	if !StepAttacks(Gote, Pawn, sq).IsSet(mustSquare(t, "5f")) {
		t.Error("gote pawn on 5e does not attack 5f")
	}
}

func TestFileMask(t *testing.T) {
	for f := 0; f < FileNB; f++ {
		if n := FileMask(f).PopCount(); n != RankNB {
			t.Errorf("file %d has %d squares, want %d", f, n, RankNB)
		}
	}
}

func TestBareKingsMoves(t *testing.T) {
	pos, err := ParseSFEN("4k4/9/9/9/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	if n := pos.GenerateLegalMoves().Len(); n != 5 {
		t.Errorf("bare kings: %d legal moves, want 5", n)
	}
}
