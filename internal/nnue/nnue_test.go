package nnue

import (
	"slices"
	"testing"

	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/shogi"
)

const testHalfDims = 8

func newTestEvaluator(t *testing.T, anchor features.Anchor) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(features.New(anchor), testHalfDims, 12345)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestNewEvaluatorRejectsBadWidth(t *testing.T) {
	for _, dims := range []int{0, -2, 7} {
		if _, err := NewEvaluator(features.HalfKP{}, dims, 1); err == nil {
			t.Errorf("NewEvaluator(%d) should fail", dims)
		}
	}
}

// TestIncrementalMatchesRefresh plays a fixed line of moves, including
// captures, drops, promotions and king moves, and checks the incrementally
// updated accumulator against a full refresh after every move.
func TestIncrementalMatchesRefresh(t *testing.T) {
	line := []string{
		"7g7f", "3c3d", "8h2b+", "3a2b", "B*4e", "5a4b",
		"4e3d", "2b3c", "3d2c+", "3c2d", "5i4h", "B*5e",
		"2g2f", "5e3g+", "4h3g", "2d2e", "B*5e", "2e2f",
		"3g2f", "P*3e",
	}

	for _, anchor := range []features.Anchor{features.Friend, features.Enemy} {
		t.Run(anchor.String(), func(t *testing.T) {
			inc := newTestEvaluator(t, anchor)
			ref := newTestEvaluator(t, anchor)

			pos := shogi.NewPosition()
			inc.Refresh(pos)

			sawRefresh := false
			for _, s := range line {
				m, err := shogi.ParseMove(s, pos)
				if err != nil {
					t.Fatalf("ParseMove(%q): %v", s, err)
				}
				if !pos.GenerateLegalMoves().Contains(m) {
					t.Fatalf("%s is not legal in %s", s, pos.SFEN())
				}

				inc.Push()
				pos.MakeMove(m)
				refreshed := inc.Update(pos)
				sawRefresh = sawRefresh || refreshed[shogi.Sente] || refreshed[shogi.Gote]

				ref.Refresh(pos)
				for _, persp := range []shogi.Color{shogi.Sente, shogi.Gote} {
					if !slices.Equal(inc.Accumulation(persp), ref.Accumulation(persp)) {
						t.Fatalf("after %s: %s accumulator differs from refresh", s, persp)
					}
				}
				if inc.Evaluate(pos) != ref.Evaluate(pos) {
					t.Fatalf("after %s: evaluation differs", s)
				}
			}
			if !sawRefresh {
				t.Error("expected the king moves to force a refresh")
			}
		})
	}
}

func TestPushPopRestores(t *testing.T) {
	e := newTestEvaluator(t, features.Friend)
	pos := shogi.NewPosition()
	e.Refresh(pos)
	before := slices.Clone(e.Accumulation(shogi.Sente))
	score := e.Evaluate(pos)

	m, err := shogi.ParseMove("2g2f", pos)
	if err != nil {
		t.Fatal(err)
	}
	e.Push()
	undo := pos.MakeMove(m)
	e.Update(pos)
	if slices.Equal(before, e.Accumulation(shogi.Sente)) {
		t.Error("accumulator unchanged by a pawn move")
	}

	pos.UnmakeMove(m, undo)
	e.Pop()
	if !slices.Equal(before, e.Accumulation(shogi.Sente)) {
		t.Error("Pop did not restore the accumulator")
	}
	if e.Evaluate(pos) != score {
		t.Error("evaluation changed after Pop")
	}
}

func TestStartPositionSymmetry(t *testing.T) {
	e := newTestEvaluator(t, features.Friend)
	pos := shogi.NewPosition()
	e.Refresh(pos)
	if !slices.Equal(e.Accumulation(shogi.Sente), e.Accumulation(shogi.Gote)) {
		t.Error("symmetric start position should give equal accumulators")
	}
}

func TestClampedReLU(t *testing.T) {
	tests := []struct {
		in   int16
		want int8
	}{
		{-500, 0},
		{0, 0},
		{64, 64},
		{127, 127},
		{3000, 127},
	}
	for _, tc := range tests {
		if got := ClampedReLU(tc.in); got != tc.want {
			t.Errorf("ClampedReLU(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTransformerHash(t *testing.T) {
	ft := NewFeatureTransformer(256)
	if got := ft.HashValue(features.HalfKP{}); got != 0x5D69D5B8^512 {
		t.Errorf("HashValue = %#x", got)
	}
}
