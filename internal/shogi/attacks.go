package shogi

// direction is a (file, rank) step. Positive rank points from Sente's back
// rank towards Gote's.
type direction struct {
	df, dr int
}

var (
	northDirs    = []direction{{0, 1}}
	diagonalDirs = []direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	straightDirs = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
)

// Step patterns for Sente. Gote uses the same patterns with the rank flipped.
var stepPatterns = [PieceTypeNB][]direction{
	Pawn:      {{0, 1}},
	Knight:    {{-1, 2}, {1, 2}},
	Silver:    {{-1, 1}, {0, 1}, {1, 1}, {-1, -1}, {1, -1}},
	Gold:      goldSteps,
	King:      kingSteps,
	ProPawn:   goldSteps,
	ProLance:  goldSteps,
	ProKnight: goldSteps,
	ProSilver: goldSteps,
	Horse:     {{0, 1}, {0, -1}, {1, 0}, {-1, 0}},
	Dragon:    {{1, 1}, {-1, 1}, {1, -1}, {-1, -1}},
}

var (
	goldSteps = []direction{{-1, 1}, {0, 1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}}
	kingSteps = []direction{{-1, 1}, {0, 1}, {1, 1}, {-1, 0}, {1, 0}, {-1, -1}, {0, -1}, {1, -1}}
)

// Precomputed non-sliding attacks: [Color][PieceType][Square].
var stepAttacks = initStepAttacks()

func initStepAttacks() (t [ColorNB][PieceTypeNB][SquareNB]Bitboard) {
	for c := Sente; c <= Gote; c++ {
		for pt := Pawn; pt < PieceTypeNB; pt++ {
			for sq := Square(0); sq < NoSquare; sq++ {
				var bb Bitboard
				for _, d := range stepPatterns[pt] {
					dr := d.dr
					if c == Gote {
						dr = -dr
					}
					if to, ok := offset(sq, d.df, dr); ok {
						bb = bb.Set(to)
					}
				}
				t[c][pt][sq] = bb
			}
		}
	}
	return t
}

// offset returns the square (df, dr) away from sq, if it is on the board.
func offset(sq Square, df, dr int) (Square, bool) {
	f := sq.File() + df
	r := sq.Rank() + dr
	if f < 0 || f >= FileNB || r < 0 || r >= RankNB {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

// slide returns the squares reached from sq along dirs, stopping at (and
// including) the first occupied square on each ray.
func slide(sq Square, occupied Bitboard, dirs []direction, flip bool) Bitboard {
	var bb Bitboard
	for _, d := range dirs {
		dr := d.dr
		if flip {
			dr = -dr
		}
		s := sq
		for {
			to, ok := offset(s, d.df, dr)
			if !ok {
				break
			}
			bb = bb.Set(to)
			if occupied.IsSet(to) {
				break
			}
			s = to
		}
	}
	return bb
}

// LanceAttacks returns the squares a lance of color c on sq attacks.
func LanceAttacks(c Color, sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, northDirs, c == Gote)
}

// BishopAttacks returns the diagonal sliding attacks from sq.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, diagonalDirs, false)
}

// RookAttacks returns the orthogonal sliding attacks from sq.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, straightDirs, false)
}

// StepAttacks returns the non-sliding attacks of a piece type.
func StepAttacks(c Color, pt PieceType, sq Square) Bitboard {
	return stepAttacks[c][pt][sq]
}

// Attacks returns every square the piece on sq attacks given the occupancy.
func Attacks(pc Piece, sq Square, occupied Bitboard) Bitboard {
	c, pt := pc.Color(), pc.Type()
	switch pt {
	case Lance:
		return LanceAttacks(c, sq, occupied)
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Horse:
		return BishopAttacks(sq, occupied).Or(stepAttacks[c][pt][sq])
	case Dragon:
		return RookAttacks(sq, occupied).Or(stepAttacks[c][pt][sq])
	default:
		return stepAttacks[c][pt][sq]
	}
}

// AttackersTo returns the pieces of color c attacking sq.
// Step and slide patterns are symmetric under a color flip, so attackers
// are found by looking outward from sq with the opponent's patterns.
func (p *Position) AttackersTo(sq Square, c Color, occupied Bitboard) Bitboard {
	them := c.Other()
	own := p.ByColor[c]

	att := stepAttacks[them][Pawn][sq].And(p.ByType[Pawn])
	att = att.Or(stepAttacks[them][Knight][sq].And(p.ByType[Knight]))
	att = att.Or(stepAttacks[them][Silver][sq].And(p.ByType[Silver]))
	att = att.Or(stepAttacks[them][Gold][sq].And(p.golds()))
	att = att.Or(stepAttacks[them][King][sq].And(p.ByType[King].Or(p.ByType[Horse]).Or(p.ByType[Dragon])))
	att = att.Or(LanceAttacks(them, sq, occupied).And(p.ByType[Lance]))
	att = att.Or(BishopAttacks(sq, occupied).And(p.ByType[Bishop].Or(p.ByType[Horse])))
	att = att.Or(RookAttacks(sq, occupied).And(p.ByType[Rook].Or(p.ByType[Dragon])))

	return att.And(own)
}

// IsSquareAttacked returns true if sq is attacked by any piece of byColor.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return !p.AttackersTo(sq, byColor, p.Occupied).IsEmpty()
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSq[p.SideToMove], p.SideToMove.Other())
}

// golds returns every piece that moves like a gold.
func (p *Position) golds() Bitboard {
	return p.ByType[Gold].Or(p.ByType[ProPawn]).Or(p.ByType[ProLance]).
		Or(p.ByType[ProKnight]).Or(p.ByType[ProSilver])
}
