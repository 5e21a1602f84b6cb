// Package samples persists collected price points in a WAL so chart data
// survives across runs.
package samples

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultSampleDir   = "./data/samples"
	sampleSegmentLimit = 1000
	sampleMaxSegments  = 100
	sampleKeyPrefix    = "sample_"
)

// PricePoint is one collected observation of an instrument's price.
// Price is kept as a decimal string so the stored series stays exact.
type PricePoint struct {
	Instrument string    `json:"instrument"`
	Price      string    `json:"price"`
	Timestamp  time.Time `json:"ts"`
}

// WALStore persists price points in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed sample store under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultSampleDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "sample_",
		SegmentThreshold: sampleSegmentLimit,
		MaxSegments:      sampleMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init sample WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends one price point.
func (s *WALStore) Save(point PricePoint) error {
	if s == nil || s.wal == nil {
		return errors.New("sample store is not initialized")
	}
	if point.Instrument == "" {
		return fmt.Errorf("price point instrument is required")
	}

	payload, err := json.Marshal(point)
	if err != nil {
		return errors.Wrap(err, "marshal price point")
	}

	key := fmt.Sprintf("%s%s", sampleKeyPrefix, point.Instrument)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Points returns every stored price point for the instrument, oldest
// first.
func (s *WALStore) Points(instrument string) ([]PricePoint, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("sample store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := sampleKeyPrefix + instrument
	var points []PricePoint
	for msg := range s.wal.Iterator() {
		if msg.Key != key {
			continue
		}
		var p PricePoint
		if err := json.Unmarshal(msg.Value, &p); err != nil {
			return nil, errors.Wrap(err, "decode price point")
		}
		points = append(points, p)
	}
	return points, nil
}

// Instruments lists every instrument that has at least one stored point.
func (s *WALStore) Instruments() ([]string, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("sample store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var instruments []string
	for msg := range s.wal.Iterator() {
		name := strings.TrimPrefix(msg.Key, sampleKeyPrefix)
		if name == msg.Key || seen[name] {
			continue
		}
		seen[name] = true
		instruments = append(instruments, name)
	}
	return instruments, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("sample store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
