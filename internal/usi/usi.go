package usi

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/hailam/shoginnue/internal/nnue"
	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/shogi"
	"github.com/hailam/shoginnue/internal/storage"
	"github.com/hailam/shoginnue/internal/verify"
)

// Defaults for the evaluator behind the "eval" command.
const (
	defaultEvalDims = 32
	evalSeed        = 12345
)

// USI implements the Universal Shogi Interface protocol.
type USI struct {
	position *shogi.Position
	store    *storage.Storage // optional, nil disables persistence

	// Options
	anchor   features.Anchor
	threads  int
	evalDims int

	evaluator *nnue.Evaluator // built lazily by "eval"

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// CPU profiling
	profileFile *os.File
}

// New creates a new USI protocol handler. store may be nil.
func New(store *storage.Storage) *USI {
	return &USI{
		position: shogi.NewPosition(),
		store:    store,
		threads:  runtime.NumCPU(),
		evalDims: defaultEvalDims,
		in:       os.Stdin,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
}

// SetIO redirects the protocol streams.
func (u *USI) SetIO(in io.Reader, out, errOut io.Writer) {
	u.in, u.out, u.errOut = in, out, errOut
}

// Run starts the USI main loop. It returns when "quit" is received or the
// input ends.
func (u *USI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "usi":
			u.handleUSI()
		case "isready":
			fmt.Fprintln(u.out, "readyok")
		case "usinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			u.handleQuit()
			return nil
		// Debug commands
		case "d":
			fmt.Fprintln(u.out, u.position.String())
			fmt.Fprintf(u.out, "SFEN: %s\n", u.position.SFEN())
		case "features":
			u.handleFeatures()
		case "eval":
			u.handleEval()
		case "perft":
			u.handlePerft(args)
		case "test":
			u.handleTest(args)
		default:
			fmt.Fprintf(u.errOut, "info string Unknown command: %s\n", cmd)
		}
	}

	u.handleQuit()
	return scanner.Err()
}

// handleUSI responds to the "usi" command.
func (u *USI) handleUSI() {
	fmt.Fprintln(u.out, "id name shoginnue")
	fmt.Fprintln(u.out, "id author shoginnue developers")
	fmt.Fprintln(u.out)
	fmt.Fprintf(u.out, "option name Anchor type combo default %s var Friend var Enemy\n", u.anchor)
	fmt.Fprintf(u.out, "option name Threads type spin default %d min 1 max 1024\n", u.threads)
	fmt.Fprintf(u.out, "option name EvalDims type spin default %d min 2 max 1024\n", defaultEvalDims)
	fmt.Fprintln(u.out, "option name CPUProfile type string default <empty>")
	fmt.Fprintln(u.out, "usiok")
}

// handleNewGame resets the position for a new game.
func (u *USI) handleNewGame() {
	u.position = shogi.NewPosition()
	if u.evaluator != nil {
		u.evaluator.Reset()
	}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 7g7f 3c3d
//   - position sfen <sfen>
//   - position sfen <sfen> moves 7g7f
func (u *USI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	// Find "moves" keyword
	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i
			break
		}
	}

	var pos *shogi.Position
	switch args[0] {
	case "startpos":
		pos = shogi.NewPosition()
	case "sfen":
		var err error
		pos, err = shogi.ParseSFEN(strings.Join(args[1:moveStart], " "))
		if err != nil {
			fmt.Fprintf(u.errOut, "info string Invalid SFEN: %v\n", err)
			return
		}
	default:
		return
	}

	// Apply moves
	if moveStart < len(args) {
		for _, moveStr := range args[moveStart+1:] {
			m, err := shogi.ParseMove(moveStr, pos)
			if err != nil || !pos.GenerateLegalMoves().Contains(m) {
				fmt.Fprintf(u.errOut, "info string Invalid move: %s\n", moveStr)
				return
			}
			pos.MakeMove(m)
		}
	}

	u.position = pos
}

// handleSetOption parses "setoption name <id> [value <x>]".
func (u *USI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	// Handle options
	switch strings.ToLower(name) {
	case "anchor":
		anchor, err := features.ParseAnchor(value)
		if err != nil {
			fmt.Fprintf(u.errOut, "info string %v\n", err)
			return
		}
		u.anchor = anchor
		u.evaluator = nil
	case "threads":
		n, err := strconv.Atoi(value)
		if err == nil && n >= 1 {
			u.threads = n
		}
	case "evaldims":
		n, err := strconv.Atoi(value)
		if err == nil && n >= 2 && n%2 == 0 {
			u.evalDims = n
			u.evaluator = nil
		}
	case "cpuprofile":
		u.stopProfile()
		// Start new profile if path provided
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(u.errOut, "info string Failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				fmt.Fprintf(u.errOut, "info string Failed to start profile: %v\n", err)
				return
			}
			u.profileFile = f
			fmt.Fprintf(u.errOut, "info string CPU profiling to %s\n", value)
		}
	default:
		fmt.Fprintf(u.errOut, "info string Unknown option: %s\n", name)
	}
}

func (u *USI) stopProfile() {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		fmt.Fprintf(u.errOut, "info string CPU profile stopped\n")
		u.profileFile = nil
	}
}

// handleQuit stops profiling before the loop exits.
func (u *USI) handleQuit() {
	u.stopProfile()
}

// handleFeatures prints the active feature indices of each perspective.
func (u *USI) handleFeatures() {
	fs := features.New(u.anchor)
	fmt.Fprintf(u.out, "feature set: %s[%d]\n", fs.Name(), features.Dimensions)

	for _, persp := range []shogi.Color{shogi.Sente, shogi.Gote} {
		var active features.IndexList
		fs.AppendActiveIndices(u.position, persp, &active)
		indices := slices.Clone(active.Slice())
		slices.Sort(indices)

		fmt.Fprintf(u.out, "%s: king %d, %d active, digest %016x\n",
			persp, fs.KingIndex(u.position, persp), len(indices), indexDigest(indices))
		fmt.Fprintln(u.out, " ", strings.Trim(fmt.Sprint(indices), "[]"))
	}
}

// indexDigest hashes a sorted index list.
func indexDigest(indices []int) uint64 {
	h := xxhash.New()
	var buf [4]byte
	for _, idx := range indices {
		binary.LittleEndian.PutUint32(buf[:], uint32(idx))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// handleEval prints the network output for the current position.
func (u *USI) handleEval() {
	if u.evaluator == nil {
		e, err := nnue.NewEvaluator(features.New(u.anchor), u.evalDims, evalSeed)
		if err != nil {
			fmt.Fprintf(u.errOut, "info string %v\n", err)
			return
		}
		u.evaluator = e
	}
	u.evaluator.Reset()
	u.evaluator.Refresh(u.position)
	fmt.Fprintf(u.out, "NNUE evaluation: %d (random weights, %d hidden)\n",
		u.evaluator.Evaluate(u.position), u.evalDims)
}

// handlePerft runs a perft test.
func (u *USI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := u.position.Perft(depth)
	elapsed := time.Since(start)

	fmt.Fprintf(u.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(u.out, "NPS: %.0f\n", nps)
	}
}

// handleTest dispatches "test nnue <sub command>".
func (u *USI) handleTest(args []string) {
	if len(args) < 2 || args[0] != "nnue" {
		u.testUsage()
		return
	}

	switch args[1] {
	case "test_features":
		u.handleTestFeatures(args[2:])
	case "info":
		u.handleTestInfo()
	default:
		u.testUsage()
	}
}

func (u *USI) testUsage() {
	fmt.Fprintln(u.out, "usage:")
	fmt.Fprintln(u.out, " test nnue test_features [games N] [seed S] [plies P] [accumulator]")
	fmt.Fprintln(u.out, " test nnue info")
}

// handleTestFeatures replays random games checking incremental feature
// updates against full enumeration.
func (u *USI) handleTestFeatures(args []string) {
	opts := verify.DefaultOptions()
	opts.Workers = u.threads
	opts.Anchor = u.anchor

	for i := 0; i < len(args); i++ {
		key := args[i]
		if key == "accumulator" {
			opts.CheckAccumulator = true
			continue
		}
		if i+1 >= len(args) {
			fmt.Fprintf(u.errOut, "info string Missing value for %s\n", key)
			return
		}
		n, err := strconv.ParseUint(args[i+1], 10, 64)
		if err != nil {
			fmt.Fprintf(u.errOut, "info string Invalid %s: %v\n", key, err)
			return
		}
		i++

		switch key {
		case "games":
			opts.Games = int(n)
		case "seed":
			opts.Seed = n
		case "plies":
			opts.MaxPly = int(n)
		default:
			fmt.Fprintf(u.errOut, "info string Unknown parameter: %s\n", key)
			return
		}
	}

	opts.Progress = func(done, total int) {
		if done%100 == 0 || done == total {
			fmt.Fprint(u.out, ".")
		}
	}

	tester, err := verify.NewTester(opts)
	if err != nil {
		fmt.Fprintf(u.errOut, "info string %v\n", err)
		return
	}

	fmt.Fprintf(u.out, "feature set: %s[%d]\n", features.New(opts.Anchor).Name(), features.Dimensions)
	fmt.Fprint(u.out, "start testing with random games")
	report, err := tester.Run(context.Background())
	fmt.Fprintln(u.out)
	if err != nil {
		fmt.Fprintf(u.out, "failed.\n%v\n", err)
		return
	}
	fmt.Fprintln(u.out, report.String())

	if u.store == nil {
		return
	}
	if err := u.store.SaveReport(report); err != nil {
		fmt.Fprintf(u.errOut, "info string Failed to save report: %v\n", err)
		return
	}
	total, err := u.store.MergeCoverage(report.FeatureSet, tester.Observed())
	if err != nil {
		fmt.Fprintf(u.errOut, "info string Failed to save coverage: %v\n", err)
		return
	}
	fmt.Fprintf(u.out, "cumulative coverage: %d (%g%% of %d) features\n",
		total.Len(), 100*float64(total.Len())/float64(features.Dimensions), features.Dimensions)
}

// handleTestInfo describes the feature set and any stored history.
func (u *USI) handleTestInfo() {
	fs := features.New(u.anchor)
	fmt.Fprintf(u.out, "feature set: %s\n", fs.Name())
	fmt.Fprintf(u.out, "hash: %08x\n", fs.HashValue())
	fmt.Fprintf(u.out, "dimensions: %d (%d king squares x %d)\n", features.Dimensions, features.SquareNB, features.PS_END)
	fmt.Fprintf(u.out, "max active: %d\n", features.MaxActiveDimensions)

	if u.store == nil {
		return
	}
	reports, err := u.store.Reports()
	if err != nil {
		fmt.Fprintf(u.errOut, "info string Failed to read reports: %v\n", err)
		return
	}
	fmt.Fprintf(u.out, "stored runs: %d\n", len(reports))
	if n := len(reports); n > 0 {
		last := reports[n-1]
		fmt.Fprintf(u.out, "last run: %s, %s, %d games, %d moves, digest %016x\n",
			last.Finished.Format(time.RFC3339), last.FeatureSet, last.Games, last.Moves, last.Digest)
	}
	coverage, err := u.store.Coverage(fs.Name())
	if err != nil {
		fmt.Fprintf(u.errOut, "info string Failed to read coverage: %v\n", err)
		return
	}
	fmt.Fprintf(u.out, "cumulative coverage: %d features\n", coverage.Len())
}
