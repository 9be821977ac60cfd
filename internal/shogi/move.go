package shogi

import "fmt"

// Move encodes a shogi move in 16 bits:
// bits 0-6:   to square (0-80)
// bits 7-13:  from square (0-80), or the dropped piece type for drops
// bit 14:     promotion
// bit 15:     drop
type Move uint16

const (
	flagPromotion Move = 1 << 14
	flagDrop      Move = 1 << 15
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a board move.
func NewMove(from, to Square) Move {
	return Move(to) | Move(from)<<7
}

// NewPromotion creates a board move that promotes the moving piece.
func NewPromotion(from, to Square) Move {
	return NewMove(from, to) | flagPromotion
}

// NewDrop creates a drop of a hand piece onto to.
func NewDrop(pt PieceType, to Square) Move {
	return Move(to) | Move(pt)<<7 | flagDrop
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & 0x7F)
}

// From returns the origin square (only valid if IsDrop() is false).
func (m Move) From() Square {
	return Square((m >> 7) & 0x7F)
}

// DropType returns the dropped piece type (only valid if IsDrop() is true).
func (m Move) DropType() PieceType {
	return PieceType((m >> 7) & 0x7F)
}

// IsDrop returns true if the move places a piece from hand.
func (m Move) IsDrop() bool {
	return m&flagDrop != 0
}

// IsPromotion returns true if the moving piece promotes.
func (m Move) IsPromotion() bool {
	return m&flagPromotion != 0
}

// String returns the USI format of the move (e.g., "7g7f", "8h2b+", "P*5e").
func (m Move) String() string {
	if m == NoMove {
		return "resign"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", sfenChars[m.DropType()], m.To())
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// ParseMove parses a USI format move string. It checks the syntax and that
// the move refers to the right pieces, not that it is legal.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) == 4 && s[1] == '*' {
		pt := PieceTypeFromChar(s[0])
		if pt == NoPieceType || pt == King {
			return NoMove, fmt.Errorf("invalid drop piece: %c", s[0])
		}
		to, err := ParseSquare(s[2:4])
		if err != nil {
			return NoMove, err
		}
		if pos.HandCount(pos.SideToMove, pt) == 0 {
			return NoMove, fmt.Errorf("no %s in hand for %s", pt, s)
		}
		return NewDrop(pt, to), nil
	}

	if len(s) != 4 && !(len(s) == 5 && s[4] == '+') {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	pc := pos.PieceOn(from)
	if pc == NoPiece || pc.Color() != pos.SideToMove {
		return NoMove, fmt.Errorf("no piece to move at %s", from)
	}

	if len(s) == 5 {
		if !pc.Type().CanPromote() {
			return NoMove, fmt.Errorf("%s cannot promote", pc.Type())
		}
		return NewPromotion(from, to), nil
	}
	return NewMove(from, to), nil
}

// MaxMoves bounds the number of pseudo-legal moves in any position.
const MaxMoves = 1024

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	Captured Piece
	Dirty    DirtyPiece
}
