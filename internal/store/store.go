package store

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

const keyStats = "stats"

// Analysis is one stored evaluation of a position under a specific network.
type Analysis struct {
	FEN        string    `json:"fen"`
	Network    string    `json:"network"`
	Value      int32     `json:"value"`
	PSQT       int32     `json:"psqt"`
	LegalMoves int       `json:"legal_moves"`
	InCheck    bool      `json:"in_check"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Stats tracks usage of the analysis store.
type Stats struct {
	Analyzed  int `json:"analyzed"`
	CacheHits int `json:"cache_hits"`
}

// Store wraps BadgerDB for persistent analysis results.
type Store struct {
	db *badger.DB
}

// Open opens the store in the platform data directory.
func Open() (*Store, error) {
	dbDir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return openOpts(badger.DefaultOptions(dbDir))
}

// OpenInMemory opens a store that is discarded on close.
func OpenInMemory() (*Store, error) {
	return openOpts(badger.DefaultOptions("").WithInMemory(true))
}

func openOpts(opts badger.Options) (*Store, error) {
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// analysisKey hashes the position together with the network identity, so
// results from different networks never collide.
func analysisKey(fen, network string) []byte {
	h := xxhash.New()
	h.WriteString(fen)
	h.WriteString("\x00")
	h.WriteString(network)

	key := make([]byte, 9)
	key[0] = 'a'
	binary.BigEndian.PutUint64(key[1:], h.Sum64())
	return key
}

// Put stores an analysis result, overwriting any previous result for the
// same position and network.
func (s *Store) Put(a *Analysis) error {
	a.AnalyzedAt = time.Now()

	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(a.FEN, a.Network), data)
	})
}

// Get looks up a stored analysis. The second return is false when the
// position has not been analyzed under this network.
func (s *Store) Get(fen, network string) (*Analysis, bool, error) {
	var a Analysis
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(fen, network))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})

	if !found || err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

// LoadStats loads usage statistics, returning zeroes if none are stored.
func (s *Store) LoadStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordLookup bumps the usage counters after one analysis request.
func (s *Store) RecordLookup(hit bool) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	if hit {
		stats.CacheHits++
	} else {
		stats.Analyzed++
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}
