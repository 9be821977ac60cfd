package shogi

import (
	"math/bits"
	"strings"
)

// Bitboard represents the 81 board squares as a bit set.
// Squares 0-63 live in lo, squares 64-80 in the low 17 bits of hi.
type Bitboard struct {
	lo, hi uint64
}

// Empty is the bitboard with no squares set.
var Empty = Bitboard{}

// Universe has every board square set.
var Universe = Bitboard{lo: ^uint64(0), hi: 1<<(SquareNB-64) - 1}

// squareBB is filled by a variable initializer so that every table built
// from it, here or in init functions of other files, sees it populated.
var squareBB = func() (t [SquareNB + 1]Bitboard) {
	for sq := Square(0); sq < NoSquare; sq++ {
		if sq < 64 {
			t[sq] = Bitboard{lo: 1 << sq}
		} else {
			t[sq] = Bitboard{hi: 1 << (sq - 64)}
		}
	}
	return t
}()

// SquareBB returns a bitboard with only the given square set.
// NoSquare yields an empty bitboard.
func SquareBB(sq Square) Bitboard {
	return squareBB[sq]
}

// Or returns the union of two bitboards.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{b.lo | o.lo, b.hi | o.hi}
}

// And returns the intersection of two bitboards.
func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{b.lo & o.lo, b.hi & o.hi}
}

// AndNot returns the squares of b that are not in o.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{b.lo &^ o.lo, b.hi &^ o.hi}
}

// Xor returns the symmetric difference of two bitboards.
func (b Bitboard) Xor(o Bitboard) Bitboard {
	return Bitboard{b.lo ^ o.lo, b.hi ^ o.hi}
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b.Or(squareBB[sq])
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b.AndNot(squareBB[sq])
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return !b.And(squareBB[sq]).IsEmpty()
}

// IsEmpty returns true if no bits are set.
func (b Bitboard) IsEmpty() bool {
	return b.lo == 0 && b.hi == 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.lo) + bits.OnesCount64(b.hi)
}

// LSB returns the lowest set square, or NoSquare if empty.
func (b Bitboard) LSB() Square {
	if b.lo != 0 {
		return Square(bits.TrailingZeros64(b.lo))
	}
	if b.hi != 0 {
		return Square(64 + bits.TrailingZeros64(b.hi))
	}
	return NoSquare
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	if b.lo != 0 {
		sq := Square(bits.TrailingZeros64(b.lo))
		b.lo &= b.lo - 1
		return sq
	}
	if b.hi != 0 {
		sq := Square(64 + bits.TrailingZeros64(b.hi))
		b.hi &= b.hi - 1
		return sq
	}
	return NoSquare
}

// ForEach calls the function for each set square, lowest first.
func (b Bitboard) ForEach(f func(Square)) {
	for !b.IsEmpty() {
		f(b.PopLSB())
	}
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for !b.IsEmpty() {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String returns a visual representation of the bitboard, rank "a" first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := RankNB - 1; rank >= 0; rank-- {
		for file := 0; file < FileNB; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('a' + byte(RankNB-1-rank))
		sb.WriteByte('\n')
	}
	sb.WriteString("9 8 7 6 5 4 3 2 1\n")
	return sb.String()
}

// FileMask returns the bitboard of every square on the given file (0-8).
func FileMask(file int) Bitboard {
	return fileMask[file]
}

var fileMask = func() (t [FileNB]Bitboard) {
	for sq := Square(0); sq < NoSquare; sq++ {
		t[sq.File()] = t[sq.File()].Set(sq)
	}
	return t
}()
