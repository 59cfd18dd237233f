package cuemodel

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeTool installs a shell script standing in for the cue binary.
func writeFakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cue")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o700))
	return path
}

func TestExportDecodesJSON(t *testing.T) {
	t.Parallel()

	tool := writeFakeTool(t, `echo '{"SOX9":{"in_go":true}}'`)
	r := New(tool, "./model/")

	var out map[string]map[string]bool
	require.NoError(t, r.Export(context.Background(), "gene_sources", &out))
	assert.True(t, out["SOX9"]["in_go"])
}

func TestExportSurfacesToolError(t *testing.T) {
	t.Parallel()

	tool := writeFakeTool(t, `echo 'field not allowed' >&2; exit 1`)
	r := New(tool, "./model/")

	_, err := r.ExportRaw(context.Background(), "gene_sources")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field not allowed")
}

func TestVet(t *testing.T) {
	t.Parallel()

	t.Run("CleanModel", func(t *testing.T) {
		r := New(writeFakeTool(t, "exit 0"), "./model/")
		assert.NoError(t, r.Vet(context.Background()))
	})

	t.Run("InvalidModel", func(t *testing.T) {
		r := New(writeFakeTool(t, `echo 'conflicting values' >&2; exit 1`), "./model/")
		err := r.Vet(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting values")
	})
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	assert.True(t, New(writeFakeTool(t, "exit 0"), ".").Available())
	assert.False(t, New("/nonexistent/cue-binary", ".").Available())
}
