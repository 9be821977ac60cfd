package shogi

// promotionZone returns true if sq lies in c's promotion zone
// (the three ranks nearest the opponent).
func promotionZone(c Color, sq Square) bool {
	return sq.RelativeRank(c) >= RankNB-3
}

// deadSquare returns true if a piece of type pt and color c on sq could
// never move again: pawns and lances on the last rank, knights on the last two.
func deadSquare(pt PieceType, c Color, sq Square) bool {
	rr := sq.RelativeRank(c)
	switch pt {
	case Pawn, Lance:
		return rr == RankNB-1
	case Knight:
		return rr >= RankNB-2
	}
	return false
}

// GenerateLegalMoves returns all legal moves for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := p.GeneratePseudoLegalMoves()
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves returns all moves that obey piece movement and
// drop rules, without checking whether the mover's king is left attacked.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateBoardMoves(ml)
	p.generateDrops(ml)
	return ml
}

// generateBoardMoves adds every move of a piece already on the board.
func (p *Position) generateBoardMoves(ml *MoveList) {
	us := p.SideToMove
	own := p.ByColor[us]

	pieces := own
	for !pieces.IsEmpty() {
		from := pieces.PopLSB()
		pc := p.Board[from]
		pt := pc.Type()

		targets := Attacks(pc, from, p.Occupied).AndNot(own)
		for !targets.IsEmpty() {
			to := targets.PopLSB()

			if pt.CanPromote() && (promotionZone(us, from) || promotionZone(us, to)) {
				ml.Add(NewPromotion(from, to))
				if deadSquare(pt, us, to) {
					continue
				}
			}
			ml.Add(NewMove(from, to))
		}
	}
}

// generateDrops adds every drop of a hand piece onto an empty square.
func (p *Position) generateDrops(ml *MoveList) {
	us := p.SideToMove
	empty := Universe.AndNot(p.Occupied)

	for _, pt := range HandTypes {
		if p.Hand[us][pt] == 0 {
			continue
		}

		targets := empty
		if pt == Pawn {
			// Two unpromoted pawns of one side may not share a file
			pawns := p.PiecesOf(us, Pawn)
			for !pawns.IsEmpty() {
				targets = targets.AndNot(fileMask[pawns.PopLSB().File()])
			}
		}

		for !targets.IsEmpty() {
			to := targets.PopLSB()
			if deadSquare(pt, us, to) {
				continue
			}
			ml.Add(NewDrop(pt, to))
		}
	}
}

// filterLegalMoves keeps the moves that do not leave the mover's king
// attacked and are not a pawn drop delivering mate.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	legal := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			legal.Add(m)
		}
	}
	return legal
}

// IsLegal returns true if the pseudo-legal move m is legal.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	defer p.UnmakeMove(m, undo)

	if p.IsSquareAttacked(p.KingSq[us], us.Other()) {
		return false
	}

	// Dropping a pawn to give mate is forbidden
	if m.IsDrop() && m.DropType() == Pawn && p.InCheck() && !p.hasEvasion() {
		return false
	}

	return true
}

// hasEvasion returns true if the side to move has any move that leaves its
// king safe. Pawn-drop-mate is not considered here.
func (p *Position) hasEvasion() bool {
	us := p.SideToMove
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		safe := !p.IsSquareAttacked(p.KingSq[us], us.Other())
		p.UnmakeMove(m, undo)
		if safe {
			return true
		}
	}
	return false
}

// HasLegalMoves returns true if the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// Perft counts the number of leaf nodes at the given depth.
func (p *Position) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}
