package verify

import (
	"fmt"
	"runtime"

	"github.com/hailam/shoginnue/internal/nnue/features"
)

// Options configures a verification run.
type Options struct {
	Games   int    // number of random games
	MaxPly  int    // plies per game before it is abandoned
	Seed    uint64 // base seed, each game derives its own
	Workers int    // games played concurrently

	Anchor features.Anchor

	// CheckAccumulator also compares an incrementally updated accumulator
	// of HalfDimensions width against a full refresh after every move.
	CheckAccumulator bool
	HalfDimensions   int

	// Progress, if set, is called after each finished game.
	Progress func(done, total int)
}

// DefaultOptions returns the settings of the classic feature test.
func DefaultOptions() Options {
	return Options{
		Games:          1000,
		MaxPly:         256,
		Seed:           20171128,
		Workers:        runtime.NumCPU(),
		Anchor:         features.Friend,
		HalfDimensions: 16,
	}
}

func (o Options) validate() error {
	if o.Games < 0 {
		return fmt.Errorf("games must not be negative, got %d", o.Games)
	}
	if o.MaxPly <= 0 {
		return fmt.Errorf("max ply must be positive, got %d", o.MaxPly)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", o.Workers)
	}
	if o.CheckAccumulator && (o.HalfDimensions <= 0 || o.HalfDimensions%2 != 0) {
		return fmt.Errorf("invalid hidden width %d", o.HalfDimensions)
	}
	return nil
}
