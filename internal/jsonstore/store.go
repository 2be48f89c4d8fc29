package jsonstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/facts/internal/record"
)

// Store is the capped append store: one JSON array file per record kind,
// bounded to the most recent maxEntries records.
//
// Appends are serialized per kind; the read-modify-write of the array file
// is a critical section, and the replacement write goes through a temp file
// plus rename so readers never observe a partially written array.
type Store struct {
	dir        string
	maxEntries int
	logger     *log.Logger

	mu    sync.Mutex
	locks map[record.Kind]*sync.Mutex
}

// New creates a Store rooted at dir. maxEntries below 1 falls back to 100.
func New(dir string, maxEntries int, logger *log.Logger) *Store {
	if maxEntries < 1 {
		maxEntries = 100
	}
	return &Store{
		dir:        dir,
		maxEntries: maxEntries,
		logger:     logger,
		locks:      map[record.Kind]*sync.Mutex{},
	}
}

// Init creates the data directory and seeds empty array files for the given
// kinds when they do not exist yet.
func (s *Store) Init(kinds ...record.Kind) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	for _, kind := range kinds {
		path := s.Path(kind)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				return fmt.Errorf("seed %s: %w", path, err)
			}
			s.logger.Printf("Created new store file: %s", path)
		}
	}
	return nil
}

// Path returns the array file path for a kind.
func (s *Store) Path(kind record.Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// Dir returns the store's data directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaxEntries returns the retention bound.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// Append appends rec to the kind's array, dropping the oldest entries once
// the array exceeds the retention bound. Best-effort: any failure is logged
// and reported as false, never raised.
func (s *Store) Append(kind record.Kind, rec record.Record) bool {
	lock := s.kindLock(kind)
	lock.Lock()
	defer lock.Unlock()

	all := s.readAll(kind)
	all = append(all, rec)
	if len(all) > s.maxEntries {
		all = all[len(all)-s.maxEntries:]
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		s.logger.Printf("Failed to marshal %s records: %v", kind, err)
		return false
	}
	if err := s.replaceFile(s.Path(kind), data); err != nil {
		s.logger.Printf("Failed to write %s store: %v", kind, err)
		return false
	}
	return true
}

// Recent returns up to limit of the most recent records for a kind, oldest
// first, optionally filtered by category. limit <= 0 means no limit beyond
// the retention bound.
func (s *Store) Recent(kind record.Kind, category string, limit int) ([]record.Record, error) {
	lock := s.kindLock(kind)
	lock.Lock()
	defer lock.Unlock()

	all := s.readAll(kind)
	if category != "" {
		filtered := all[:0]
		for _, rec := range all {
			if rec.Category() == category {
				filtered = append(filtered, rec)
			}
		}
		all = filtered
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// Count returns the number of stored records for a kind.
func (s *Store) Count(kind record.Kind) int {
	lock := s.kindLock(kind)
	lock.Lock()
	defer lock.Unlock()
	return len(s.readAll(kind))
}

// readAll loads the kind's array. A missing or corrupt file is treated as an
// empty array, not a failure; the next successful append rewrites it.
func (s *Store) readAll(kind record.Kind) []record.Record {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("Failed to read %s store, treating as empty: %v", kind, err)
		}
		return []record.Record{}
	}
	var all []record.Record
	if err := json.Unmarshal(data, &all); err != nil {
		s.logger.Printf("Invalid JSON in %s, resetting to empty list", s.Path(kind))
		return []record.Record{}
	}
	return all
}

// replaceFile writes data to a temp file in the same directory and renames
// it over path, so a concurrent reader sees either the old or the new array.
func (s *Store) replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Purge truncates a kind's array back to empty. Used by the purge CLI.
func (s *Store) Purge(kind record.Kind) error {
	lock := s.kindLock(kind)
	lock.Lock()
	defer lock.Unlock()
	return s.replaceFile(s.Path(kind), []byte("[]"))
}

func (s *Store) kindLock(kind record.Kind) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[kind]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[kind] = lock
	}
	return lock
}
