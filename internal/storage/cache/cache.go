// Package cache provides the persistent tier of the result cache: a
// WAL-backed keyed store that survives across runs. Entries have no TTL
// and stay valid until Clear.
package cache

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	segmentLimit = 100
	maxSegments  = 10
)

// ErrNotFound is returned by Get when the key has never been set (or the
// store was cleared since).
var ErrNotFound = errors.New("cache entry not found")

// Store is a keyed JSON store persisted in a WAL directory. Each Store
// owns its own directory, so namespaces are isolated and one Clear never
// touches another store's entries. Last write wins on replay.
type Store struct {
	dir string

	mu      sync.RWMutex
	wal     *gowal.Wal
	entries map[string][]byte
}

// Open loads (or creates) the store in dir, replaying existing segments.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) open() error {
	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              s.dir,
		Prefix:           "cache_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return errors.Wrapf(err, "open cache store %s", s.dir)
	}

	entries := make(map[string][]byte)
	for msg := range wal.Iterator() {
		entries[msg.Key] = msg.Value
	}

	s.wal = wal
	s.entries = entries
	return nil
}

// Has reports whether a value is stored under key.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Get decodes the value stored under key into out.
func (s *Store) Get(key string, out interface{}) error {
	s.mu.RLock()
	payload, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "decode cache entry %s", key)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode cache entry %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(next, key, payload); err != nil {
		return errors.Wrapf(err, "write cache entry %s", key)
	}
	s.entries[key] = payload
	return nil
}

// Clear drops every entry and the backing segments, leaving an empty
// store ready for use.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wal.Close(); err != nil {
		return errors.Wrapf(err, "close cache store %s", s.dir)
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrapf(err, "remove cache store %s", s.dir)
	}
	return s.open()
}

// Close closes the backing WAL.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
