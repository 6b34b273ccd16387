// Package dedup tracks which hardware addresses have already been
// recorded, across sessions. It pairs a bounded in-memory set of recent
// addresses with a persistent append-only index of 6-byte binary
// records, so membership answers stay cheap while the on-disk history
// can grow without bound.
package dedup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/shaunagostinho/gowardrive/internal/mac"
)

const (
	// CacheSize is the capacity of the in-memory address set.
	CacheSize = 1000
	// cleanThreshold is the size that triggers cache maintenance.
	cleanThreshold = 800
	// blockSize is the length of one index record.
	blockSize = 6
	// IndexFileName is the index file inside the capture directory.
	IndexFileName = "mac_index.bin"
)

// Engine answers "have I already recorded this address?" and records
// new ones. It is owned by a single goroutine; the index file is
// opened and closed within each operation, so the file stays safe to
// reopen externally (e.g. for the periodic storage health check).
//
// Callers must check InCache or InIndex before Remember: the engine
// does not guard against duplicate inserts, and a double Remember
// appends two identical index records.
type Engine struct {
	dir   string
	cache map[string]struct{}
	ready bool
}

// New creates an engine rooted at the given capture directory.
func New(dir string) *Engine {
	return &Engine{
		dir:   dir,
		cache: make(map[string]struct{}),
	}
}

// IndexPath returns the location of the persistent index file.
func (e *Engine) IndexPath() string {
	return filepath.Join(e.dir, IndexFileName)
}

// EnsureIndex creates the capture directory and the index file if they
// are absent. Idempotent; a no-op once initialized.
func (e *Engine) EnsureIndex() error {
	if e.ready {
		return nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("dedup: create dir %s: %w", e.dir, err)
	}
	// O_CREATE without O_TRUNC: an existing index keeps its history.
	f, err := os.OpenFile(e.IndexPath(), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dedup: create index %s: %w", e.IndexPath(), err)
	}
	f.Close()
	e.ready = true
	return nil
}

// VerifyStorage re-checks that the capture directory still exists and
// re-initializes the index if it vanished (storage removed and
// reinserted mid-session).
func (e *Engine) VerifyStorage() error {
	if _, err := os.Stat(e.dir); err != nil {
		e.ready = false
	}
	return e.EnsureIndex()
}

// InCache reports whether the canonical address is in the recent set.
func (e *Engine) InCache(addr string) bool {
	_, ok := e.cache[addr]
	return ok
}

// CacheLen returns the current recent-set size.
func (e *Engine) CacheLen() int { return len(e.cache) }

// InIndex scans the persistent index for the address. Cost is linear
// in index size; acceptable because the query runs once per newly seen
// candidate per scan cycle, not per observation.
func (e *Engine) InIndex(addr string) (bool, error) {
	if err := e.EnsureIndex(); err != nil {
		return false, err
	}
	want, err := mac.Parse(addr)
	if err != nil {
		return false, err
	}

	f, err := os.Open(e.IndexPath())
	if err != nil {
		return false, fmt.Errorf("dedup: open index: %w", err)
	}
	defer f.Close()

	var block [blockSize]byte
	for {
		_, err := io.ReadFull(f, block[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("dedup: read index: %w", err)
		}
		if bytes.Equal(block[:], want[:]) {
			return true, nil
		}
	}
}

// Remember adds the address to the recent set, runs cache maintenance,
// then appends its 6-byte form to the index. The index write happens
// before Remember returns so cache membership always implies index
// membership.
func (e *Engine) Remember(addr string) error {
	a, err := mac.Parse(addr)
	if err != nil {
		return err
	}
	e.cache[addr] = struct{}{}
	e.maintainCache()

	if err := e.EnsureIndex(); err != nil {
		return err
	}
	f, err := os.OpenFile(e.IndexPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dedup: open index for append: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(a[:]); err != nil {
		return fmt.Errorf("dedup: append index: %w", err)
	}
	return nil
}

// maintainCache evicts entries once the set exceeds the clean
// threshold, shrinking it to half capacity. Eviction order is the
// lexicographic order of the canonical strings, not recency.
func (e *Engine) maintainCache() {
	if len(e.cache) <= cleanThreshold {
		return
	}
	keys := make([]string, 0, len(e.cache))
	for k := range e.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	target := CacheSize / 2
	for _, k := range keys {
		if len(e.cache) <= target {
			break
		}
		delete(e.cache, k)
	}
}
