package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// StartSFEN is the SFEN string for the starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// handOrder is the conventional order of pieces in an SFEN hand field.
var handOrder = [...]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// ParseSFEN parses an SFEN string and returns a Position.
func ParseSFEN(sfen string) (*Position, error) {
	parts := strings.Fields(sfen)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid SFEN: need at least 3 fields, got %d", len(parts))
	}

	pos := &Position{Ply: 1}
	pos.KingSq[Sente] = NoSquare
	pos.KingSq[Gote] = NoSquare

	// Parse piece placement (field 0)
	if err := parseBoard(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "b":
		pos.SideToMove = Sente
	case "w":
		pos.SideToMove = Gote
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse hands (field 2)
	if err := parseHand(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse move number (field 3, optional)
	if len(parts) > 3 {
		ply, err := strconv.Atoi(parts[3])
		if err != nil || ply < 1 {
			return nil, fmt.Errorf("invalid move number: %s", parts[3])
		}
		pos.Ply = ply
	}

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SFEN %q: %w", sfen, err)
	}

	return pos, nil
}

// parseBoard parses the piece placement section of an SFEN string.
func parseBoard(pos *Position, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != RankNB {
		return fmt.Errorf("invalid piece placement: need %d ranks, got %d", RankNB, len(rows))
	}

	for i, row := range rows {
		rank := RankNB - 1 - i // SFEN starts from rank "a"
		file := 0
		promoted := false

		for j := 0; j < len(row); j++ {
			c := row[j]
			if file >= FileNB {
				return fmt.Errorf("too many squares in rank %c", 'a'+i)
			}

			switch {
			case c >= '1' && c <= '9':
				if promoted {
					return fmt.Errorf("dangling '+' in rank %c", 'a'+i)
				}
				file += int(c - '0')
			case c == '+':
				promoted = true
			default:
				pc := PieceFromChar(c, promoted)
				if pc == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				pos.putPiece(pc, NewSquare(file, rank))
				file++
				promoted = false
			}
		}

		if promoted {
			return fmt.Errorf("dangling '+' in rank %c", 'a'+i)
		}
		if file != FileNB {
			return fmt.Errorf("invalid number of squares in rank %c: got %d", 'a'+i, file)
		}
	}

	return nil
}

// parseHand parses the hand section of an SFEN string (e.g., "2Pb" or "-").
func parseHand(pos *Position, hand string) error {
	if hand == "-" {
		return nil
	}

	count := 0
	for i := 0; i < len(hand); i++ {
		c := hand[i]
		if c >= '0' && c <= '9' {
			count = count*10 + int(c-'0')
			continue
		}

		pc := PieceFromChar(c, false)
		if pc == NoPiece || pc.Type() == King {
			return fmt.Errorf("invalid hand piece: %c", c)
		}
		if count == 0 {
			count = 1
		}
		pos.Hand[pc.Color()][pc.Type()] += count
		count = 0
	}

	if count != 0 {
		return fmt.Errorf("hand ends with a count: %s", hand)
	}
	return nil
}

// SFEN returns the SFEN string for the position.
func (p *Position) SFEN() string {
	var sb strings.Builder

	for rank := RankNB - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < FileNB; file++ {
			pc := p.Board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == Sente {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	sb.WriteString(p.handString())
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(p.Ply))

	return sb.String()
}

// handString returns the SFEN hand field.
func (p *Position) handString() string {
	var sb strings.Builder
	for c := Sente; c <= Gote; c++ {
		for _, pt := range handOrder {
			n := p.Hand[c][pt]
			if n == 0 {
				continue
			}
			if n > 1 {
				sb.WriteString(strconv.Itoa(n))
			}
			sb.WriteString(NewPiece(pt, c).String())
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
