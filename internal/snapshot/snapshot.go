// Package snapshot persists dated pipeline state for time-series diffing.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snapshot is an immutable record of aggregate pipeline state on one
// calendar date. Same-day re-runs supersede, never amend.
type Snapshot struct {
	Date            string   `json:"date"`
	TotalGenes      int      `json:"total_genes"`
	CriticalCount   int      `json:"critical_count"`
	GapSymbols      []string `json:"gap_symbols"`
	FaceBaseSymbols []string `json:"facebase_symbols"`
}

// Store reads and writes one JSON file per calendar date.
type Store struct {
	dir string
}

// NewStore points at a snapshot directory; the directory is created on
// first save.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Load returns every snapshot sorted by date. A missing directory is an
// empty history, not an error.
func (s *Store) Load() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", e.Name(), err)
		}
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("parse snapshot %s: %w", e.Name(), err)
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date < snaps[j].Date })
	return snaps, nil
}

// Save writes the snapshot to <date>.json, replacing any existing entry
// for that date. Symbol lists are sorted before writing.
func (s *Store) Save(snap Snapshot) error {
	if snap.Date == "" {
		return fmt.Errorf("snapshot has no date")
	}
	sort.Strings(snap.GapSymbols)
	sort.Strings(snap.FaceBaseSymbols)

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	path := filepath.Join(s.dir, snap.Date+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LatestTwo returns the two most recent snapshots, or ok=false when the
// history is too short to diff.
func (s *Store) LatestTwo() (prev, curr Snapshot, ok bool, err error) {
	snaps, err := s.Load()
	if err != nil || len(snaps) < 2 {
		return Snapshot{}, Snapshot{}, false, err
	}
	return snaps[len(snaps)-2], snaps[len(snaps)-1], true, nil
}

// Diff is the symbol-set delta between two snapshots.
type Diff struct {
	GapsOpened     []string
	GapsClosed     []string
	CoverageGained []string
	CoverageLost   []string
	TotalDelta     int
}

// Empty reports whether the diff carries no changes.
func (d Diff) Empty() bool {
	return len(d.GapsOpened) == 0 && len(d.GapsClosed) == 0 &&
		len(d.CoverageGained) == 0 && len(d.CoverageLost) == 0 && d.TotalDelta == 0
}

// Compare computes set deltas from prev to curr.
func Compare(prev, curr Snapshot) Diff {
	return Diff{
		GapsOpened:     subtract(curr.GapSymbols, prev.GapSymbols),
		GapsClosed:     subtract(prev.GapSymbols, curr.GapSymbols),
		CoverageGained: subtract(curr.FaceBaseSymbols, prev.FaceBaseSymbols),
		CoverageLost:   subtract(prev.FaceBaseSymbols, curr.FaceBaseSymbols),
		TotalDelta:     curr.TotalGenes - prev.TotalGenes,
	}
}

// subtract returns a-b as a sorted slice.
func subtract(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, s := range b {
		drop[s] = true
	}
	var out []string
	for _, s := range a {
		if !drop[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
