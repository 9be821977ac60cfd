package shogi

import "strings"

// Color represents the side owning a piece. Sente moves first.
type Color uint8

const (
	Sente Color = iota
	Gote

	ColorNB       = 2
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Sente:
		return "Sente"
	case Gote:
		return "Gote"
	default:
		return "NoColor"
	}
}

// PieceType represents the kind of a shogi piece, promoted kinds included.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Lance
	Knight
	Silver
	Bishop
	Rook
	Gold
	King
	ProPawn
	ProLance
	ProKnight
	ProSilver
	Horse
	Dragon

	PieceTypeNB
)

// promotedBit is set on the promoted form of Pawn..Rook.
const promotedBit = 8

var pieceTypeNames = [PieceTypeNB]string{
	"None", "Pawn", "Lance", "Knight", "Silver", "Bishop", "Rook", "Gold", "King",
	"ProPawn", "ProLance", "ProKnight", "ProSilver", "Horse", "Dragon",
}

// String returns the piece type name.
func (pt PieceType) String() string {
	if pt >= PieceTypeNB {
		return "None"
	}
	return pieceTypeNames[pt]
}

// CanPromote returns true if the piece type has a promoted form.
func (pt PieceType) CanPromote() bool {
	return pt >= Pawn && pt <= Rook
}

// IsPromoted returns true for promoted piece types.
func (pt PieceType) IsPromoted() bool {
	return pt >= ProPawn && pt < PieceTypeNB
}

// Promote returns the promoted form, or pt itself if it cannot promote.
func (pt PieceType) Promote() PieceType {
	if pt.CanPromote() {
		return pt | promotedBit
	}
	return pt
}

// Demote returns the unpromoted form. Captured pieces enter the hand demoted.
func (pt PieceType) Demote() PieceType {
	if pt.IsPromoted() {
		return pt &^ promotedBit
	}
	return pt
}

// HandTypes lists the piece types that can be held in hand, in the fixed
// order used whenever hands are enumerated.
var HandTypes = [...]PieceType{Pawn, Lance, Knight, Silver, Gold, Bishop, Rook}

// MaxHand is the number of pieces of each hand type in a full set.
var MaxHand = [Gold + 1]int{
	Pawn:   18,
	Lance:  4,
	Knight: 4,
	Silver: 4,
	Gold:   4,
	Bishop: 2,
	Rook:   2,
}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType | color<<4
type Piece uint8

const (
	NoPiece Piece = 0
	PieceNB       = 32
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt == NoPieceType || pt >= PieceTypeNB || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) | Piece(c)<<4
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & 15)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p == NoPiece {
		return NoColor
	}
	return Color(p >> 4)
}

const sfenChars = " PLNSBRGK"

// String returns the SFEN notation for the piece.
// Uppercase for Sente, lowercase for Gote, "+" prefix when promoted.
func (p Piece) String() string {
	if p == NoPiece || p.Type() >= PieceTypeNB {
		return " "
	}
	pt := p.Type()
	s := string(sfenChars[pt.Demote()])
	if pt.IsPromoted() {
		s = "+" + s
	}
	if p.Color() == Gote {
		return strings.ToLower(s)
	}
	return s
}

// PieceTypeFromChar converts an uppercase SFEN letter to an unpromoted PieceType.
func PieceTypeFromChar(c byte) PieceType {
	for i := 1; i < len(sfenChars); i++ {
		if sfenChars[i] == c {
			return PieceType(i)
		}
	}
	return NoPieceType
}

// PieceFromChar converts an SFEN character to a Piece.
func PieceFromChar(c byte, promoted bool) Piece {
	color := Sente
	if c >= 'a' && c <= 'z' {
		color = Gote
		c -= 'a' - 'A'
	}
	pt := PieceTypeFromChar(c)
	if pt == NoPieceType {
		return NoPiece
	}
	if promoted {
		if !pt.CanPromote() {
			return NoPiece
		}
		pt = pt.Promote()
	}
	return NewPiece(pt, color)
}

