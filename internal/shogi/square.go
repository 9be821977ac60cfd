// Package shogi implements a 9x9 shogi board with hands, move generation and
// the dirty-piece records consumed by incremental NNUE updates.
package shogi

import "fmt"

// Square represents a square on the shogi board (0-80).
// Rank-major layout: square = rank*9 + file. File 0 is the 9-file and rank 0
// is rank "i" (Sente's back rank), so square 0 is "9i" and square 80 is "1a".
type Square uint8

// Board geometry.
const (
	FileNB   = 9
	RankNB   = 9
	SquareNB = FileNB * RankNB

	NoSquare Square = SquareNB
)

// File returns the file (column) of the square (0-8, where 0 is the 9-file).
func (sq Square) File() int {
	return int(sq) % FileNB
}

// Rank returns the rank (row) of the square (0-8, where 0 is rank "i").
func (sq Square) Rank() int {
	return int(sq) / FileNB
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*FileNB + file)
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Rotate returns the square reflected through the centre of the board.
func (sq Square) Rotate() Square {
	return SquareNB - 1 - sq
}

// RelativeRank returns the rank counted from the given color's back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == Sente {
		return sq.Rank()
	}
	return RankNB - 1 - sq.Rank()
}

// String returns the USI notation for the square (e.g., "7g").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", '9'-sq.File(), 'i'-sq.Rank())
}

// ParseSquare parses USI notation (e.g., "7g") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int('9') - int(s[0])
	rank := int('i') - int(s[1])

	if file < 0 || file >= FileNB || rank < 0 || rank >= RankNB {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}
