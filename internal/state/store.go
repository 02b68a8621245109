// Package state holds the working record set shared by the CLI and the API
// server. Replacement is single-writer: a load must Begin before it Commits,
// and only the most recently begun load may install its records.
package state

import (
	"sync"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
)

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []dataset.Record
	source  string
	gen     uint64 // last generation handed out by Begin
	applied uint64 // generation of the installed record set
}

// New returns an empty store.
func New() *Store { return &Store{records: []dataset.Record{}} }

// Begin reserves a generation for a load that is about to start.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Commit installs records from the load that began with gen. It reports false
// and leaves the store untouched when a newer load has begun since.
func (s *Store) Commit(gen uint64, source string, records []dataset.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || gen <= s.applied {
		return false
	}
	s.records = clone(records)
	s.source = source
	s.applied = gen
	return true
}

// Replace is Begin followed by Commit for callers with no concurrent loads.
func (s *Store) Replace(source string, records []dataset.Record) uint64 {
	gen := s.Begin()
	s.Commit(gen, source, records)
	return gen
}

// Prepend adds one record in front of the set without reparsing.
func (s *Store) Prepend(r dataset.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dataset.Record, 0, len(s.records)+1)
	out = append(out, r)
	s.records = append(out, s.records...)
}

// Snapshot returns a copy of the current set and its source name.
func (s *Store) Snapshot() ([]dataset.Record, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.records), s.source
}

// Generation returns the generation of the installed record set.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func clone(in []dataset.Record) []dataset.Record {
	out := make([]dataset.Record, len(in))
	copy(out, in)
	return out
}
