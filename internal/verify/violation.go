package verify

import (
	"errors"
	"fmt"

	"github.com/hailam/shoginnue/internal/shogi"
)

// Consistency failures detected while replaying games.
var (
	ErrOutOfRange    = errors.New("index out of range")
	ErrAlreadyActive = errors.New("added index already active")
	ErrNotActive     = errors.New("removed index not active")
	ErrDuplicate     = errors.New("duplicate index in full enumeration")
	ErrMismatch      = errors.New("incremental set differs from full enumeration")
	ErrAccumulator   = errors.New("incremental accumulator differs from refresh")
)

// Violation describes where a consistency check failed.
type Violation struct {
	Game        int
	Ply         int
	Move        shogi.Move
	SFEN        string
	Perspective shogi.Color
	Index       int // -1 when no single index is at fault
	Err         error
}

func (v *Violation) Error() string {
	msg := fmt.Sprintf("game %d ply %d move %s perspective %s: %v", v.Game, v.Ply, v.Move, v.Perspective, v.Err)
	if v.Index >= 0 {
		msg += fmt.Sprintf(" (index %d)", v.Index)
	}
	return msg + "\nposition: " + v.SFEN
}

func (v *Violation) Unwrap() error {
	return v.Err
}
