package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/verify"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReports(t *testing.T) {
	s := openTemp(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, games := range []int{30, 10, 20} {
		r := &verify.Report{
			FeatureSet: "HalfKP(Friend)",
			Dimensions: features.Dimensions,
			Games:      games,
			Moves:      uint64(games * 100),
			Digest:     uint64(i + 1),
			Elapsed:    verify.Duration(1500 * time.Millisecond),
			Finished:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveReport(r); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	reports, err := s.Reports()
	if err != nil {
		t.Fatalf("Reports: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	for i, want := range []int{30, 10, 20} {
		if reports[i].Games != want {
			t.Errorf("report %d: games %d, want %d", i, reports[i].Games, want)
		}
	}
	if reports[0].Elapsed != verify.Duration(1500*time.Millisecond) {
		t.Errorf("elapsed did not round trip: %v", reports[0].Elapsed)
	}
	if !reports[2].Finished.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("finished did not round trip: %v", reports[2].Finished)
	}
}

func TestCoverage(t *testing.T) {
	s := openTemp(t)
	const name = "HalfKP(Friend)"

	empty, err := s.Coverage(name)
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("new feature set has %d observed indices", empty.Len())
	}

	first := verify.NewIndexSet(features.Dimensions)
	first.Add(1)
	first.Add(features.Dimensions - 1)
	if _, err := s.MergeCoverage(name, first); err != nil {
		t.Fatalf("MergeCoverage: %v", err)
	}

	second := verify.NewIndexSet(features.Dimensions)
	second.Add(1)
	second.Add(5000)
	merged, err := s.MergeCoverage(name, second)
	if err != nil {
		t.Fatalf("MergeCoverage: %v", err)
	}
	if merged.Len() != 3 {
		t.Errorf("merged coverage has %d indices, want 3", merged.Len())
	}

	loaded, err := s.Coverage(name)
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	if !loaded.Equal(merged) {
		t.Error("stored coverage differs from merged result")
	}

	other, err := s.Coverage("HalfKP(Enemy)")
	if err != nil {
		t.Fatal(err)
	}
	if other.Len() != 0 {
		t.Error("coverage leaked between feature sets")
	}
}

func TestInMemory(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open in memory: %v", err)
	}
	defer s.Close()

	if err := s.SaveReport(&verify.Report{Games: 1, Finished: time.Now()}); err != nil {
		t.Fatal(err)
	}
	reports, err := s.Reports()
	if err != nil || len(reports) != 1 {
		t.Errorf("Reports = %d, %v", len(reports), err)
	}
}

func TestDataPaths(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(DataDirEnv, dir)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir != dir {
		t.Errorf("GetDataDir = %s, want %s", dataDir, dir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}

func TestDataHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only")
	}
	home := t.TempDir()
	t.Setenv(DataDirEnv, "")
	t.Setenv("XDG_DATA_HOME", home)

	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if want := filepath.Join(home, appName); dir != want {
		t.Errorf("GetDataDir = %s, want %s", dir, want)
	}

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)
	base, err := dataHome()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".local", "share"); base != want {
		t.Errorf("dataHome = %s, want %s", base, want)
	}
}
