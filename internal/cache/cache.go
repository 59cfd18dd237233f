// Package cache implements the per-source JSON file cache used by the
// normalizers.
//
// Each cache file is a JSON object keyed by gene symbol, written with
// sorted keys and indentation so diffs stay readable. Presence of a symbol
// implies a prior successful fetch; failed or partial fetches are never
// written. Saves are whole-file rewrites via atomic rename, with no
// per-entry writes.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a read-through/write-through cache keyed by gene symbol.
type Store[T any] struct {
	path    string
	entries map[string]T
}

// Open loads the cache file at path if it exists. A missing file is an
// empty cache, not an error.
func Open[T any](path string) (*Store[T], error) {
	s := &Store[T]{
		path:    path,
		entries: make(map[string]T),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", path, err)
	}
	return s, nil
}

// Get returns the cached payload for a symbol.
func (s *Store[T]) Get(symbol string) (T, bool) {
	v, ok := s.entries[symbol]
	return v, ok
}

// Put records a successfully fetched payload for a symbol. The entry is
// not persisted until Save.
func (s *Store[T]) Put(symbol string, v T) {
	s.entries[symbol] = v
}

// Len returns the number of cached symbols.
func (s *Store[T]) Len() int {
	return len(s.entries)
}

// Path returns the backing file path.
func (s *Store[T]) Path() string {
	return s.path
}

// Save persists the whole cache in one batched write. Keys are sorted by
// the JSON encoder; the file is replaced atomically.
func (s *Store[T]) Save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
