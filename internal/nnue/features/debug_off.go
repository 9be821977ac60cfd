//go:build !nnuedebug

package features

import "github.com/hailam/shoginnue/internal/shogi"

const debugChecks = false

func checkHandCount(int, shogi.PieceType) {}

func checkListCapacity(int) {}
