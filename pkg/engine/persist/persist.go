// Package persist durably caches root-level search results across process restarts. It is a
// side-cache, not a transposition table: the hot search path never touches it, only the root
// probe before a search starts and the root record after one finishes.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
)

// Record is the durable result recorded for a position.
type Record struct {
	Move  board.Move `json:"move"`
	Score eval.Score `json:"score"`
	Depth int        `json:"depth"`
}

// Store wraps a Badger database keyed by FEN, caching the best move and score found for a
// position across engine restarts.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a Badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logger is noisy and redundant with logw.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening persist store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the record for position, and whether one was found.
func (s *Store) Load(position string) (Record, bool) {
	var rec Record
	found := false

	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(position))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	return rec, found
}

// Save records the best move and score found for position, overwriting any prior record only
// if the new one was searched at least as deep.
func (s *Store) Save(position string, rec Record) error {
	existing, ok := s.Load(position)
	if ok && existing.Depth > rec.Depth {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(position), data)
	})
}
