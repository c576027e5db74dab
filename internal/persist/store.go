// Package persist provides scan-result and deep-crawl-state
// persistence, adapted from the teacher's internal/state/store.go
// BoltStore.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corescan/corescan/internal/deepcrawl"
	"github.com/corescan/corescan/internal/detect"
)

var (
	bucketResults = []byte("scan_results")
	bucketDeep    = []byte("deep_scan_state")
	keyLatest     = []byte("latest")
)

// ScanResults is the final, whole-scan result set: one entry per
// detection category.
type ScanResults struct {
	Target     string                        `json:"target"`
	Categories map[string][]detect.Detection `json:"categories"`
}

// DeepScanState is a resumable snapshot of an in-progress deep crawl,
// matching internal/deepcrawl.Snapshot's shape.
type DeepScanState struct {
	Target       string                        `json:"target"`
	Categories   map[string][]detect.Detection `json:"categories"`
	PagesScanned int                           `json:"pagesScanned"`
}

// Store persists scan output. Implemented by BoltStore; satisfies
// internal/deepcrawl.Store via the Save adapter below.
type Store interface {
	SaveScanResults(ctx context.Context, results ScanResults) error
	SaveDeepScanState(ctx context.Context, state DeepScanState) error
}

// BoltStore implements Store with a BoltDB file, adapted field-for-field
// from the teacher's internal/state.BoltStore.
type BoltStore struct {
	db     *bolt.DB
	target string
}

// NewBoltStore opens (creating if needed) a BoltDB file at path.
func NewBoltStore(path, target string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketResults); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketDeep)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db, target: target}, nil
}

// SaveScanResults persists the final aggregate result for one scan.
func (s *BoltStore) SaveScanResults(ctx context.Context, results ScanResults) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal scan results: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put(resultsKey(results.Target), data)
	})
}

// LoadScanResults retrieves the most recently saved results for target,
// or (nil, nil) if none exist.
func (s *BoltStore) LoadScanResults(target string) (*ScanResults, error) {
	var out *ScanResults
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data := b.Get(resultsKey(target))
		if data == nil {
			return nil
		}
		var results ScanResults
		if err := json.Unmarshal(data, &results); err != nil {
			return err
		}
		out = &results
		return nil
	})
	return out, err
}

// SaveDeepScanState persists a throttled deep-crawl progress snapshot,
// so an interrupted scan can resume from its last externalized state.
func (s *BoltStore) SaveDeepScanState(ctx context.Context, state DeepScanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal deep scan state: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDeep)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put(resultsKey(state.Target), data)
	})
}

// LoadDeepScanState retrieves the last saved deep-crawl snapshot for
// target, or (nil, nil) if none exist.
func (s *BoltStore) LoadDeepScanState(target string) (*DeepScanState, error) {
	var out *DeepScanState
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDeep)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data := b.Get(resultsKey(target))
		if data == nil {
			return nil
		}
		var state DeepScanState
		if err := json.Unmarshal(data, &state); err != nil {
			return err
		}
		out = &state
		return nil
	})
	return out, err
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func resultsKey(target string) []byte {
	if target == "" {
		return keyLatest
	}
	return []byte(target)
}

// Adapter wraps a Store as internal/deepcrawl.Store (a single
// Save(ctx, snap) method), binding in the scan's target URL.
type Adapter struct {
	Store  Store
	Target string
}

// Save implements internal/deepcrawl.Store.
func (a Adapter) Save(ctx context.Context, snap deepcrawl.Snapshot) error {
	return a.Store.SaveDeepScanState(ctx, DeepScanState{
		Target:       a.Target,
		Categories:   snap.Categories,
		PagesScanned: snap.PagesScanned,
	})
}
