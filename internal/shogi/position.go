package shogi

import (
	"fmt"
	"strings"
)

// Position represents a complete shogi position.
type Position struct {
	// Piece on each square, NoPiece when empty
	Board [SquareNB]Piece

	// Piece bitboards by color and by type (color-blind)
	ByColor [ColorNB]Bitboard
	ByType  [PieceTypeNB]Bitboard

	// All pieces on the board
	Occupied Bitboard

	// Pieces in hand: [Color][PieceType], Pawn..Gold
	Hand [ColorNB][Gold + 1]int

	// Game state
	SideToMove Color
	Ply        int // SFEN move number, starts at 1

	// King positions (cached for check detection)
	KingSq [ColorNB]Square

	// Pieces changed by the move that led to this position
	Dirty DirtyPiece
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseSFEN(StartSFEN)
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceOn returns the piece on the given square, or NoPiece if empty.
func (p *Position) PieceOn(sq Square) Piece {
	return p.Board[sq]
}

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square {
	return p.KingSq[c]
}

// Pieces returns every occupied square.
func (p *Position) Pieces() Bitboard {
	return p.Occupied
}

// Kings returns the squares of both kings.
func (p *Position) Kings() Bitboard {
	return p.ByType[King]
}

// PiecesOf returns the squares of c's pieces of type pt.
func (p *Position) PiecesOf(c Color, pt PieceType) Bitboard {
	return p.ByColor[c].And(p.ByType[pt])
}

// HandCount returns how many pieces of type pt color c holds.
func (p *Position) HandCount(c Color, pt PieceType) int {
	return p.Hand[c][pt]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq] == NoPiece
}

// putPiece places a piece on an empty square.
func (p *Position) putPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()

	p.Board[sq] = pc
	p.ByColor[c] = p.ByColor[c].Set(sq)
	p.ByType[pt] = p.ByType[pt].Set(sq)
	p.Occupied = p.Occupied.Set(sq)

	if pt == King {
		p.KingSq[c] = sq
	}
}

// removePiece removes and returns the piece on a square.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.Board[sq]
	if pc == NoPiece {
		return NoPiece
	}
	c, pt := pc.Color(), pc.Type()

	p.Board[sq] = NoPiece
	p.ByColor[c] = p.ByColor[c].Clear(sq)
	p.ByType[pt] = p.ByType[pt].Clear(sq)
	p.Occupied = p.Occupied.Clear(sq)

	return pc
}

// MakeMove plays a move, records the changed pieces in p.Dirty and returns
// the information needed to undo it.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.SideToMove
	to := m.To()
	undo := UndoInfo{Captured: NoPiece, Dirty: p.Dirty}

	p.Dirty.Reset()

	if m.IsDrop() {
		pt := m.DropType()
		pc := NewPiece(pt, us)
		p.Hand[us][pt]--
		p.putPiece(pc, to)
		p.Dirty.Add(DirtyEntry{Role: RoleMover, Piece: pc, Result: pc, From: InHand, To: OnBoard(to)})
	} else {
		from := m.From()
		captured := p.removePiece(to)
		pc := p.removePiece(from)

		result := pc
		if m.IsPromotion() {
			result = NewPiece(pc.Type().Promote(), us)
		}
		p.putPiece(result, to)
		p.Dirty.Add(DirtyEntry{Role: RoleMover, Piece: pc, Result: result, From: OnBoard(from), To: OnBoard(to)})

		if captured != NoPiece {
			handPt := captured.Type().Demote()
			p.Hand[us][handPt]++
			undo.Captured = captured
			p.Dirty.Add(DirtyEntry{
				Role:   RoleCaptured,
				Piece:  captured,
				Result: NewPiece(handPt, us),
				From:   OnBoard(to),
				To:     InHand,
			})
		}
	}

	p.SideToMove = us.Other()
	p.Ply++
	return undo
}

// UnmakeMove undoes a move made with MakeMove.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.SideToMove = p.SideToMove.Other()
	p.Ply--
	us := p.SideToMove
	to := m.To()

	if m.IsDrop() {
		pc := p.removePiece(to)
		p.Hand[us][pc.Type()]++
	} else {
		pc := p.removePiece(to)
		if m.IsPromotion() {
			pc = NewPiece(pc.Type().Demote(), us)
		}
		p.putPiece(pc, m.From())

		if undo.Captured != NoPiece {
			p.putPiece(undo.Captured, to)
			p.Hand[us][undo.Captured.Type().Demote()]--
		}
	}

	p.Dirty = undo.Dirty
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n  9  8  7  6  5  4  3  2  1\n")
	for rank := RankNB - 1; rank >= 0; rank-- {
		sb.WriteString(" ")
		for file := 0; file < FileNB; file++ {
			pc := p.Board[NewSquare(file, rank)]
			if pc == NoPiece {
				sb.WriteString(" . ")
			} else {
				fmt.Fprintf(&sb, "%2s ", pc)
			}
		}
		fmt.Fprintf(&sb, " %c\n", 'a'+RankNB-1-rank)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Hand: %s\n", p.handString())
	fmt.Fprintf(&sb, "Ply: %d\n", p.Ply)
	return sb.String()
}

// Validate checks that the position is well formed.
func (p *Position) Validate() error {
	for c := Sente; c <= Gote; c++ {
		if p.PiecesOf(c, King).PopCount() != 1 {
			return fmt.Errorf("%s must have exactly one king", c)
		}
	}

	total := [Gold + 1]int{}
	for sq := Square(0); sq < NoSquare; sq++ {
		pc := p.Board[sq]
		if pc == NoPiece || pc.Type() == King {
			continue
		}
		total[pc.Type().Demote()]++
		if deadSquare(pc.Type(), pc.Color(), sq) {
			return fmt.Errorf("%s on %s has no legal move", pc.Type(), sq)
		}
	}
	for _, pt := range HandTypes {
		total[pt] += p.Hand[Sente][pt] + p.Hand[Gote][pt]
		if total[pt] > MaxHand[pt] {
			return fmt.Errorf("too many pieces of type %s: %d", pt, total[pt])
		}
	}

	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSq[them], p.SideToMove) {
		return fmt.Errorf("%s king is in check with %s to move", them, p.SideToMove)
	}

	return nil
}
