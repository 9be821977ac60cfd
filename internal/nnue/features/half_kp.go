// HalfKP feature set for shogi NNUE evaluation.
//
// Feature HalfKP: combination of the position of one king (the anchor) and
// the position of every other piece, on the board or in hand. Squares are
// expressed in file-major shogi coordinates and rotated by 180 degrees for
// the second player, so both perspectives share one feature space.

package features

import (
	"fmt"

	"github.com/hailam/shoginnue/internal/shogi"
)

// SquareNB is the number of squares in the feature coordinate system.
const SquareNB = shogi.SquareNB

// Unique number for each piece type in hand or on each square.
// Convention: W - owned by the perspective, B - owned by the opponent.
// Hand entries are indexed by count-1 from their base.
const (
	PS_NONE = 0

	HAND_W_PAWN   = 1
	HAND_B_PAWN   = 20
	HAND_W_LANCE  = 39
	HAND_B_LANCE  = 44
	HAND_W_KNIGHT = 49
	HAND_B_KNIGHT = 54
	HAND_W_SILVER = 59
	HAND_B_SILVER = 64
	HAND_W_GOLD   = 69
	HAND_B_GOLD   = 74
	HAND_W_BISHOP = 79
	HAND_B_BISHOP = 82
	HAND_W_ROOK   = 85
	HAND_B_ROOK   = 88
	HAND_END      = 90

	PS_W_PAWN   = HAND_END
	PS_B_PAWN   = PS_W_PAWN + SquareNB
	PS_W_LANCE  = PS_B_PAWN + SquareNB
	PS_B_LANCE  = PS_W_LANCE + SquareNB
	PS_W_KNIGHT = PS_B_LANCE + SquareNB
	PS_B_KNIGHT = PS_W_KNIGHT + SquareNB
	PS_W_SILVER = PS_B_KNIGHT + SquareNB
	PS_B_SILVER = PS_W_SILVER + SquareNB
	PS_W_GOLD   = PS_B_SILVER + SquareNB
	PS_B_GOLD   = PS_W_GOLD + SquareNB
	PS_W_BISHOP = PS_B_GOLD + SquareNB
	PS_B_BISHOP = PS_W_BISHOP + SquareNB
	PS_W_HORSE  = PS_B_BISHOP + SquareNB
	PS_B_HORSE  = PS_W_HORSE + SquareNB
	PS_W_ROOK   = PS_B_HORSE + SquareNB
	PS_B_ROOK   = PS_W_ROOK + SquareNB
	PS_W_DRAGON = PS_B_ROOK + SquareNB
	PS_B_DRAGON = PS_W_DRAGON + SquareNB
	PS_END      = PS_B_DRAGON + SquareNB // = 1548
)

// Number of feature dimensions
const Dimensions = SquareNB * PS_END // = 125388

// Maximum number of simultaneously active features: every piece except the
// two kings is either on the board or in a hand.
const MaxActiveDimensions = 38

// MaxChangedDimensions bounds the removed (or added) features of one move.
const MaxChangedDimensions = shogi.MaxDirtyEntries

// boardBase gives the board base offset of each piece type, [friend, foe].
// Promoted minor pieces move like golds and share the gold region.
var boardBase = [shogi.PieceTypeNB][2]int{
	shogi.Pawn:      {PS_W_PAWN, PS_B_PAWN},
	shogi.Lance:     {PS_W_LANCE, PS_B_LANCE},
	shogi.Knight:    {PS_W_KNIGHT, PS_B_KNIGHT},
	shogi.Silver:    {PS_W_SILVER, PS_B_SILVER},
	shogi.Gold:      {PS_W_GOLD, PS_B_GOLD},
	shogi.Bishop:    {PS_W_BISHOP, PS_B_BISHOP},
	shogi.Rook:      {PS_W_ROOK, PS_B_ROOK},
	shogi.ProPawn:   {PS_W_GOLD, PS_B_GOLD},
	shogi.ProLance:  {PS_W_GOLD, PS_B_GOLD},
	shogi.ProKnight: {PS_W_GOLD, PS_B_GOLD},
	shogi.ProSilver: {PS_W_GOLD, PS_B_GOLD},
	shogi.Horse:     {PS_W_HORSE, PS_B_HORSE},
	shogi.Dragon:    {PS_W_DRAGON, PS_B_DRAGON},
}

// PieceSquareIndex maps piece to board base offset for each perspective.
// Viewed from the other side, W and B are reversed. Kings map to PS_NONE.
var PieceSquareIndex [shogi.ColorNB][shogi.PieceNB]int

// HandIndex maps a hand piece type to its base offset: [friend/foe][PieceType].
var HandIndex = [2][shogi.PieceTypeNB]int{
	// Owned by the perspective
	{
		shogi.Pawn: HAND_W_PAWN, shogi.Lance: HAND_W_LANCE, shogi.Knight: HAND_W_KNIGHT,
		shogi.Silver: HAND_W_SILVER, shogi.Gold: HAND_W_GOLD,
		shogi.Bishop: HAND_W_BISHOP, shogi.Rook: HAND_W_ROOK,
	},
	// Owned by the opponent
	{
		shogi.Pawn: HAND_B_PAWN, shogi.Lance: HAND_B_LANCE, shogi.Knight: HAND_B_KNIGHT,
		shogi.Silver: HAND_B_SILVER, shogi.Gold: HAND_B_GOLD,
		shogi.Bishop: HAND_B_BISHOP, shogi.Rook: HAND_B_ROOK,
	},
}

func init() {
	for perspective := shogi.Sente; perspective <= shogi.Gote; perspective++ {
		for c := shogi.Sente; c <= shogi.Gote; c++ {
			for pt := shogi.Pawn; pt < shogi.PieceTypeNB; pt++ {
				PieceSquareIndex[perspective][shogi.NewPiece(pt, c)] = boardBase[pt][relative(perspective, c)]
			}
		}
	}
}

// relative returns 0 if c is the perspective's own color, 1 otherwise.
func relative(perspective, c shogi.Color) int {
	if c == perspective {
		return 0
	}
	return 1
}

// Rotate reflects a square through the centre of the board.
func Rotate(sq shogi.Square) shogi.Square {
	return shogi.Square(SquareNB - 1 - int(sq))
}

// ToShogiSquare converts a native rank-major square to the file-major
// coordinates the feature tables are indexed by ("1a" = 0, "9i" = 80).
func ToShogiSquare(sq shogi.Square) shogi.Square {
	return shogi.Square((8-sq.File())*9 + 8 - sq.Rank())
}

// Orient orients a square according to perspective (rotates by 180 for Gote).
func Orient(perspective shogi.Color, sq shogi.Square) shogi.Square {
	if perspective == shogi.Sente {
		return sq
	}
	return Rotate(sq)
}

// MakeIndex computes the feature index of a board piece from a perspective.
// ksq is the oriented anchor king square returned by KingIndex.
func MakeIndex(perspective shogi.Color, sq shogi.Square, pc shogi.Piece, ksq shogi.Square) int {
	sq = ToShogiSquare(sq)
	return int(Orient(perspective, sq)) + PieceSquareIndex[perspective][pc] + PS_END*int(ksq)
}

// MakeHandIndex computes the feature index of the count-th piece of type pt
// held by owner. count is 1-based.
func MakeHandIndex(perspective, owner shogi.Color, count int, pt shogi.PieceType, ksq shogi.Square) int {
	checkHandCount(count, pt)
	return count - 1 + HandIndex[relative(perspective, owner)][pt] + PS_END*int(ksq)
}

// Anchor selects which king's square the feature space is keyed by.
type Anchor uint8

const (
	// Friend keys features by the perspective's own king.
	Friend Anchor = iota
	// Enemy keys features by the opponent's king.
	Enemy
)

// String returns the anchor name.
func (a Anchor) String() string {
	if a == Enemy {
		return "Enemy"
	}
	return "Friend"
}

// ParseAnchor parses "friend" or "enemy" (case-insensitive first letter).
func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "Friend", "friend":
		return Friend, nil
	case "Enemy", "enemy":
		return Enemy, nil
	}
	return Friend, fmt.Errorf("unknown anchor %q", s)
}

// Position is the board information the feature set reads.
type Position interface {
	KingSquare(c shogi.Color) shogi.Square
	Pieces() shogi.Bitboard
	Kings() shogi.Bitboard
	PieceOn(sq shogi.Square) shogi.Piece
	HandCount(c shogi.Color, pt shogi.PieceType) int
}

// HalfKP computes active and changed feature indices. The zero value is
// the standard friend-anchored feature set.
type HalfKP struct {
	Anchor Anchor
}

// New returns a feature set keyed by the given anchor.
func New(anchor Anchor) HalfKP {
	return HalfKP{Anchor: anchor}
}

// Name returns the feature set name embedded in evaluation files.
func (f HalfKP) Name() string {
	return "HalfKP(" + f.Anchor.String() + ")"
}

// HashValue returns the hash value embedded in evaluation files.
func (f HalfKP) HashValue() uint32 {
	h := uint32(0x5D69D5B9)
	if f.Anchor == Friend {
		h ^= 1
	}
	return h
}

// anchorColor returns the color whose king keys perspective's features.
func (f HalfKP) anchorColor(perspective shogi.Color) shogi.Color {
	if f.Anchor == Enemy {
		return perspective.Other()
	}
	return perspective
}

// KingIndex returns the oriented anchor king square for perspective.
func (f HalfKP) KingIndex(pos Position, perspective shogi.Color) shogi.Square {
	return Orient(perspective, ToShogiSquare(pos.KingSquare(f.anchorColor(perspective))))
}

// AppendActiveIndices gets a list of indices for active features.
func (f HalfKP) AppendActiveIndices(pos Position, perspective shogi.Color, active *IndexList) {
	ksq := f.KingIndex(pos, perspective)

	bb := pos.Pieces().AndNot(pos.Kings())
	for !bb.IsEmpty() {
		sq := bb.PopLSB()
		active.Push(MakeIndex(perspective, sq, pos.PieceOn(sq), ksq))
	}

	for c := shogi.Sente; c <= shogi.Gote; c++ {
		for _, pt := range shogi.HandTypes {
			for i := 1; i <= pos.HandCount(c, pt); i++ {
				active.Push(MakeHandIndex(perspective, c, i, pt, ksq))
			}
		}
	}
}

// AppendChangedIndices gets a list of indices for recently changed features.
// pos is the position after the move described by dp. The anchor king must
// not have moved; check RequiresRefresh first.
func (f HalfKP) AppendChangedIndices(pos Position, dp *shogi.DirtyPiece, perspective shogi.Color, removed, added *IndexList) {
	ksq := f.KingIndex(pos, perspective)
	for i := 0; i < dp.Len(); i++ {
		e := dp.At(i)
		if e.Piece.Type() == shogi.King {
			continue
		}

		if from, ok := e.From.Square(); ok {
			removed.Push(MakeIndex(perspective, from, e.Piece, ksq))
		} else if e.Role == shogi.RoleMover {
			// drop: the piece held the last hand slot before the move
			c, pt := e.Piece.Color(), e.Piece.Type()
			removed.Push(MakeHandIndex(perspective, c, pos.HandCount(c, pt)+1, pt, ksq))
		}

		if to, ok := e.To.Square(); ok {
			added.Push(MakeIndex(perspective, to, e.Result, ksq))
		} else if e.Role == shogi.RoleCaptured {
			c, pt := e.Result.Color(), e.Result.Type()
			added.Push(MakeHandIndex(perspective, c, pos.HandCount(c, pt), pt, ksq))
		}
	}
}

// RequiresRefresh returns whether the change means a full refresh is
// required for perspective: the anchor king moved.
func (f HalfKP) RequiresRefresh(dp *shogi.DirtyPiece, perspective shogi.Color) bool {
	mover := dp.Mover()
	return mover != nil && mover.Piece == shogi.NewPiece(shogi.King, f.anchorColor(perspective))
}

// IndexList is a list of feature indices
type IndexList struct {
	Values [MaxActiveDimensions]int
	Size   int
}

// Push adds an index to the list. A position holds at most 38 non-king
// pieces on board or in hand, so a full list means a corrupt position;
// release builds drop the extra index, nnuedebug builds panic.
func (l *IndexList) Push(idx int) {
	checkListCapacity(l.Size)
	if l.Size < MaxActiveDimensions {
		l.Values[l.Size] = idx
		l.Size++
	}
}

// Clear resets the list
func (l *IndexList) Clear() {
	l.Size = 0
}

// Slice returns the stored indices.
func (l *IndexList) Slice() []int {
	return l.Values[:l.Size]
}
