package verify

import (
	"fmt"
	"strings"
	"time"
)

// Report summarizes a successful verification run.
type Report struct {
	FeatureSet string    `json:"feature_set"`
	Dimensions int       `json:"dimensions"`
	Seed       uint64    `json:"seed"`
	Games      int       `json:"games"`
	Moves      uint64    `json:"moves"`
	Updates    uint64    `json:"updates"`
	Resets     uint64    `json:"resets"`
	Observed   int       `json:"observed"`
	Digest     uint64    `json:"digest"`
	Elapsed    Duration  `json:"elapsed"`
	Finished   time.Time `json:"finished"`
}

// Duration marshals as a human readable string.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).Round(time.Millisecond).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UpdatesPerMove returns the average number of index changes per move.
func (r *Report) UpdatesPerMove() float64 {
	if r.Moves == 0 {
		return 0
	}
	return float64(r.Updates) / float64(r.Moves)
}

// Header returns the line printed before a run starts.
func (r *Report) Header() string {
	return fmt.Sprintf("feature set: %s[%d]", r.FeatureSet, r.Dimensions)
}

// String renders the outcome in the layout of the classic feature test.
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString("passed.\n")
	fmt.Fprintf(&sb, "%d games, %d moves, %d updates, %g updates per move\n",
		r.Games, r.Moves, r.Updates, r.UpdatesPerMove())

	var resetPct float64
	if r.Moves > 0 {
		resetPct = 100 * float64(r.Resets) / float64(r.Moves)
	}
	fmt.Fprintf(&sb, "TriggerEvent(AnchorKingMoved): %d features (%g%%), %d updates (%g per move), %d resets (%g%%)\n",
		r.Observed, r.observedPct(), r.Updates, r.UpdatesPerMove(), r.Resets, resetPct)
	fmt.Fprintf(&sb, "observed %d (%g%% of %d) features\n", r.Observed, r.observedPct(), r.Dimensions)
	fmt.Fprintf(&sb, "digest %016x, %s", r.Digest, r.Elapsed)
	return sb.String()
}

func (r *Report) observedPct() float64 {
	if r.Dimensions == 0 {
		return 0
	}
	return 100 * float64(r.Observed) / float64(r.Dimensions)
}
