//go:build nnuedebug

package features

import (
	"fmt"

	"github.com/hailam/shoginnue/internal/shogi"
)

const debugChecks = true

func checkHandCount(count int, pt shogi.PieceType) {
	if count < 1 || count > shogi.MaxHand[pt] {
		panic(fmt.Sprintf("features: hand count %d out of range for %s", count, pt))
	}
}

func checkListCapacity(size int) {
	if size >= MaxActiveDimensions {
		panic(fmt.Sprintf("features: index list overflow at %d", size))
	}
}
