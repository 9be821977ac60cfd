package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/storage"
	"github.com/hailam/shoginnue/internal/usi"
	"github.com/hailam/shoginnue/internal/verify"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	runVerify   = flag.Bool("verify", false, "run the incremental feature test and exit")
	games       = flag.Int("games", 1000, "random games to play with -verify")
	seed        = flag.Uint64("seed", 20171128, "random seed for -verify")
	plies       = flag.Int("plies", 256, "maximum plies per game with -verify")
	threads     = flag.Int("threads", runtime.NumCPU(), "games played in parallel")
	anchor      = flag.String("anchor", "friend", "king anchoring the features: friend or enemy")
	accumulator = flag.Bool("accumulator", false, "also check incremental accumulators with -verify")
	dbPath      = flag.String("db", "", `database directory for reports, "auto" for the data directory`)
	history     = flag.Bool("history", false, "print stored verification reports and exit")
)

func main() {
	flag.Parse()

	// Deferred cleanups in run finish before os.Exit.
	if err := run(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store, err := openStorage(*dbPath)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	switch {
	case *history:
		return printHistory(store)
	case *runVerify:
		return verifyFeatures(store)
	default:
		// Create and run USI protocol handler
		protocol := usi.New(store)
		return protocol.Run()
	}
}

func openStorage(path string) (*storage.Storage, error) {
	switch path {
	case "":
		return nil, nil
	case "auto":
		return storage.NewStorage()
	default:
		return storage.Open(path)
	}
}

func verifyFeatures(store *storage.Storage) error {
	a, err := features.ParseAnchor(*anchor)
	if err != nil {
		return err
	}

	opts := verify.DefaultOptions()
	opts.Games = *games
	opts.Seed = *seed
	opts.MaxPly = *plies
	opts.Workers = *threads
	opts.Anchor = a
	opts.CheckAccumulator = *accumulator
	opts.Progress = func(done, total int) {
		if done%100 == 0 || done == total {
			log.Printf("%d/%d games", done, total)
		}
	}

	tester, err := verify.NewTester(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fs := features.New(a)
	fmt.Printf("feature set: %s[%d]\n", fs.Name(), features.Dimensions)
	report, err := tester.Run(ctx)
	if err != nil {
		fmt.Println("failed.")
		return err
	}
	fmt.Println(report)

	if store == nil {
		return nil
	}
	if err := store.SaveReport(report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	total, err := store.MergeCoverage(report.FeatureSet, tester.Observed())
	if err != nil {
		return fmt.Errorf("save coverage: %w", err)
	}
	log.Printf("cumulative coverage for %s: %d of %d features", report.FeatureSet, total.Len(), features.Dimensions)
	return nil
}

func printHistory(store *storage.Storage) error {
	if store == nil {
		return fmt.Errorf("-history needs -db")
	}
	reports, err := store.Reports()
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Printf("%s  %s seed %d: %d games, %d moves, %d observed, digest %016x (%s)\n",
			r.Finished.Format("2006-01-02 15:04:05"), r.Header(), r.Seed, r.Games, r.Moves, r.Observed, r.Digest, r.Elapsed)
	}
	log.Printf("%d reports", len(reports))
	return nil
}
