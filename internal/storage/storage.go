package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/hailam/shoginnue/internal/nnue/features"
	"github.com/hailam/shoginnue/internal/verify"
)

// Storage key prefixes
const (
	prefixReport   = "report/"
	prefixCoverage = "coverage/"
)

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the database in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Storage{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// reportKey orders reports by finish time.
func reportKey(r *verify.Report) []byte {
	key := make([]byte, len(prefixReport)+8)
	copy(key, prefixReport)
	binary.BigEndian.PutUint64(key[len(prefixReport):], uint64(r.Finished.UnixNano()))
	return key
}

// SaveReport stores the summary of a verification run.
func (s *Storage) SaveReport(r *verify.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(reportKey(r), data)
	})
}

// Reports returns every stored report, oldest first.
func (s *Storage) Reports() ([]verify.Report, error) {
	var reports []verify.Report

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixReport)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r verify.Report
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("decode report: %w", err)
			}
			reports = append(reports, r)
		}
		return nil
	})

	return reports, err
}

// Coverage loads the cumulative set of observed feature indices for a
// feature set. A feature set never seen before yields an empty set.
func (s *Storage) Coverage(name string) (*verify.IndexSet, error) {
	set := verify.NewIndexSet(features.Dimensions)

	err := s.db.View(func(txn *badger.Txn) error {
		return s.readCoverage(txn, name, set)
	})

	return set, err
}

// MergeCoverage adds observed to the stored coverage of a feature set and
// returns the merged set.
func (s *Storage) MergeCoverage(name string, observed *verify.IndexSet) (*verify.IndexSet, error) {
	set := verify.NewIndexSet(features.Dimensions)

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.readCoverage(txn, name, set); err != nil {
			return err
		}
		set.Union(observed)

		raw, err := set.MarshalBinary()
		if err != nil {
			return err
		}
		return txn.Set([]byte(prefixCoverage+name), s.encoder.EncodeAll(raw, nil))
	})

	return set, err
}

func (s *Storage) readCoverage(txn *badger.Txn, name string, set *verify.IndexSet) error {
	item, err := txn.Get([]byte(prefixCoverage + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil // Nothing observed yet
	}
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		raw, err := s.decoder.DecodeAll(val, nil)
		if err != nil {
			return fmt.Errorf("decompress coverage %s: %w", name, err)
		}
		return set.UnmarshalBinary(raw)
	})
}
