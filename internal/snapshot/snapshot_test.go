package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDirIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"))
	snaps, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSaveAndLoadSorted(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Save(Snapshot{Date: "2026-08-20", TotalGenes: 95}))
	require.NoError(t, s.Save(Snapshot{Date: "2026-08-13", TotalGenes: 94}))
	require.NoError(t, s.Save(Snapshot{Date: "2026-08-27", TotalGenes: 95}))

	snaps, err := s.Load()
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "2026-08-13", snaps[0].Date)
	assert.Equal(t, "2026-08-20", snaps[1].Date)
	assert.Equal(t, "2026-08-27", snaps[2].Date)
}

func TestSaveSameDateReplaces(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.Save(Snapshot{Date: "2026-08-27", CriticalCount: 5}))
	require.NoError(t, s.Save(Snapshot{Date: "2026-08-27", CriticalCount: 7}))

	snaps, err := s.Load()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 7, snaps[0].CriticalCount)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveSortsSymbolLists(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(Snapshot{
		Date:            "2026-08-27",
		GapSymbols:      []string{"ZEB2", "ALX1", "MITF"},
		FaceBaseSymbols: []string{"SOX9", "PAX3"},
	}))

	snaps, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ALX1", "MITF", "ZEB2"}, snaps[0].GapSymbols)
	assert.Equal(t, []string{"PAX3", "SOX9"}, snaps[0].FaceBaseSymbols)
}

func TestSaveWithoutDateFails(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Error(t, s.Save(Snapshot{}))
}

func TestLatestTwo(t *testing.T) {
	s := NewStore(t.TempDir())

	_, _, ok, err := s.LatestTwo()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(Snapshot{Date: "2026-08-13"}))
	_, _, ok, err = s.LatestTwo()
	require.NoError(t, err)
	assert.False(t, ok, "single snapshot cannot be diffed")

	require.NoError(t, s.Save(Snapshot{Date: "2026-08-20"}))
	prev, curr, ok, err := s.LatestTwo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-08-13", prev.Date)
	assert.Equal(t, "2026-08-20", curr.Date)
}

func TestCompare(t *testing.T) {
	prev := Snapshot{
		TotalGenes:      94,
		GapSymbols:      []string{"ALX1", "MITF", "ZEB2"},
		FaceBaseSymbols: []string{"PAX3", "SOX9"},
	}
	curr := Snapshot{
		TotalGenes:      95,
		GapSymbols:      []string{"ALX1", "RET"},
		FaceBaseSymbols: []string{"MITF", "PAX3", "SOX9", "ZEB2"},
	}

	d := Compare(prev, curr)
	assert.Equal(t, []string{"RET"}, d.GapsOpened)
	assert.Equal(t, []string{"MITF", "ZEB2"}, d.GapsClosed)
	assert.Equal(t, []string{"MITF", "ZEB2"}, d.CoverageGained)
	assert.Empty(t, d.CoverageLost)
	assert.Equal(t, 1, d.TotalDelta)
	assert.False(t, d.Empty())

	assert.True(t, Compare(curr, curr).Empty())
}
