// Package verify replays random games and checks that incrementally
// maintained feature sets always equal a full enumeration.
package verify

import (
	"context"
	"encoding/binary"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/shoginnue/internal/nnue"
	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/shogi"
)

var perspectives = [...]shogi.Color{shogi.Sente, shogi.Gote}

// Tester runs the cold/warm equivalence test.
type Tester struct {
	opts     Options
	features features.HalfKP
	net      *nnue.Network // shared read-only weights, nil unless CheckAccumulator

	mu       sync.Mutex
	done     int
	moves    uint64
	updates  uint64
	resets   uint64
	digest   uint64
	observed *IndexSet
}

// NewTester creates a tester with the given options.
func NewTester(opts Options) (*Tester, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	t := &Tester{
		opts:     opts,
		features: features.New(opts.Anchor),
		observed: NewIndexSet(features.Dimensions),
	}
	if opts.CheckAccumulator {
		t.net = nnue.NewNetwork(opts.HalfDimensions)
		t.net.InitRandom(int64(opts.Seed))
	}
	return t, nil
}

// Observed returns every index seen so far. Valid after Run returns.
func (t *Tester) Observed() *IndexSet {
	return t.observed
}

// Run plays every game and returns the summary, or the first violation.
func (t *Tester) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)

	for game := 0; game < t.opts.Games; game++ {
		if gctx.Err() != nil {
			break
		}
		game := game
		g.Go(func() error {
			res, err := t.playGame(gctx, game)
			if err != nil {
				return err
			}
			t.merge(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Cancelled before any game failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Report{
		FeatureSet: t.features.Name(),
		Dimensions: features.Dimensions,
		Seed:       t.opts.Seed,
		Games:      t.opts.Games,
		Moves:      t.moves,
		Updates:    t.updates,
		Resets:     t.resets,
		Observed:   t.observed.Len(),
		Digest:     t.digest,
		Elapsed:    Duration(time.Since(start)),
		Finished:   time.Now(),
	}, nil
}

// gameResult holds the counters of one game.
type gameResult struct {
	moves, updates, resets uint64
	digest                 uint64
	observed               *IndexSet
}

func (t *Tester) merge(res *gameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.moves += res.moves
	t.updates += res.updates
	t.resets += res.resets
	t.digest += res.digest
	t.observed.Union(res.observed)
	t.done++
	if t.opts.Progress != nil {
		t.opts.Progress(t.done, t.opts.Games)
	}
}

// game is the state of one replayed game.
type game struct {
	t      *Tester
	number int
	pos    *shogi.Position
	rng    *prng

	sets    [2]*IndexSet // running sets maintained by deltas
	scratch *IndexSet    // fresh enumeration
	hash    *xxhash.Digest
	buf     [8]byte

	inc, ref *nnue.Evaluator

	res gameResult
}

func (t *Tester) playGame(ctx context.Context, number int) (*gameResult, error) {
	g := &game{
		t:       t,
		number:  number,
		pos:     shogi.NewPosition(),
		rng:     newPRNG(gameSeed(t.opts.Seed, number)),
		sets:    [2]*IndexSet{NewIndexSet(features.Dimensions), NewIndexSet(features.Dimensions)},
		scratch: NewIndexSet(features.Dimensions),
		hash:    xxhash.New(),
	}
	g.res.observed = NewIndexSet(features.Dimensions)
	if t.net != nil {
		g.inc = nnue.NewEvaluatorFromNetwork(t.features, t.net)
		g.ref = nnue.NewEvaluatorFromNetwork(t.features, t.net)
		g.inc.Refresh(g.pos)
	}

	for _, persp := range perspectives {
		var active features.IndexList
		t.features.AppendActiveIndices(g.pos, persp, &active)
		for _, idx := range active.Slice() {
			if err := g.insert(-1, shogi.NoMove, persp, idx); err != nil {
				return nil, err
			}
		}
	}

	for ply := 0; ply < t.opts.MaxPly; ply++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		moves := g.pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			break
		}
		m := moves.Get(g.rng.intn(moves.Len()))
		g.pos.MakeMove(m)
		g.res.moves++

		if err := g.update(ply, m); err != nil {
			return nil, err
		}
		if err := g.compare(ply, m); err != nil {
			return nil, err
		}
		if g.inc != nil {
			if err := g.compareAccumulator(ply, m); err != nil {
				return nil, err
			}
		}
	}

	g.res.digest = g.hash.Sum64()
	return &g.res, nil
}

// update applies the move's delta, or a reset when the anchor king moved,
// to the running set of each perspective.
func (g *game) update(ply int, m shogi.Move) error {
	fs := g.t.features
	dp := &g.pos.Dirty

	for _, persp := range perspectives {
		if fs.RequiresRefresh(dp, persp) {
			g.sets[persp].Clear()
			g.res.resets++
			g.record('R', persp, -1)

			var active features.IndexList
			fs.AppendActiveIndices(g.pos, persp, &active)
			for _, idx := range active.Slice() {
				if err := g.add(ply, m, persp, idx); err != nil {
					return err
				}
			}
			continue
		}

		var removed, added features.IndexList
		fs.AppendChangedIndices(g.pos, dp, persp, &removed, &added)
		for _, idx := range removed.Slice() {
			if err := g.remove(ply, m, persp, idx); err != nil {
				return err
			}
		}
		for _, idx := range added.Slice() {
			if err := g.add(ply, m, persp, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// insert adds idx to the running set of persp.
func (g *game) insert(ply int, m shogi.Move, persp shogi.Color, idx int) error {
	set := g.sets[persp]
	if !set.InRange(idx) {
		return g.violation(ply, m, persp, idx, ErrOutOfRange)
	}
	if !set.Add(idx) {
		return g.violation(ply, m, persp, idx, ErrAlreadyActive)
	}
	g.res.observed.Add(idx)
	return nil
}

// add inserts idx and counts it as an update.
func (g *game) add(ply int, m shogi.Move, persp shogi.Color, idx int) error {
	if err := g.insert(ply, m, persp, idx); err != nil {
		return err
	}
	g.res.updates++
	g.record('+', persp, idx)
	return nil
}

func (g *game) remove(ply int, m shogi.Move, persp shogi.Color, idx int) error {
	set := g.sets[persp]
	if !set.InRange(idx) {
		return g.violation(ply, m, persp, idx, ErrOutOfRange)
	}
	if !set.Remove(idx) {
		return g.violation(ply, m, persp, idx, ErrNotActive)
	}
	g.res.observed.Add(idx)
	g.res.updates++
	g.record('-', persp, idx)
	return nil
}

// compare checks each running set against a fresh enumeration.
func (g *game) compare(ply int, m shogi.Move) error {
	for _, persp := range perspectives {
		var active features.IndexList
		g.t.features.AppendActiveIndices(g.pos, persp, &active)

		err := g.compareSet(ply, m, persp, active.Slice())

		// Clear only what was set, not the whole bitmap
		for _, idx := range active.Slice() {
			if g.scratch.InRange(idx) {
				g.scratch.Remove(idx)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *game) compareSet(ply int, m shogi.Move, persp shogi.Color, active []int) error {
	set := g.sets[persp]
	for _, idx := range active {
		if !g.scratch.InRange(idx) {
			return g.violation(ply, m, persp, idx, ErrOutOfRange)
		}
		if !g.scratch.Add(idx) {
			return g.violation(ply, m, persp, idx, ErrDuplicate)
		}
		if !set.Has(idx) {
			return g.violation(ply, m, persp, idx, ErrMismatch)
		}
	}
	if g.scratch.Len() != set.Len() {
		return g.violation(ply, m, persp, -1, ErrMismatch)
	}
	return nil
}

func (g *game) compareAccumulator(ply int, m shogi.Move) error {
	g.inc.Push()
	g.inc.Update(g.pos)
	g.ref.Refresh(g.pos)
	for _, persp := range perspectives {
		if !slices.Equal(g.inc.Accumulation(persp), g.ref.Accumulation(persp)) {
			return g.violation(ply, m, persp, -1, ErrAccumulator)
		}
	}
	return nil
}

// record feeds one event into the game digest.
func (g *game) record(kind byte, persp shogi.Color, idx int) {
	g.buf[0] = kind
	g.buf[1] = byte(persp)
	binary.LittleEndian.PutUint32(g.buf[2:6], uint32(int32(idx)))
	g.hash.Write(g.buf[:6])
}

func (g *game) violation(ply int, m shogi.Move, persp shogi.Color, idx int, err error) error {
	return &Violation{
		Game:        g.number,
		Ply:         ply,
		Move:        m,
		SFEN:        g.pos.SFEN(),
		Perspective: persp,
		Index:       idx,
		Err:         err,
	}
}
