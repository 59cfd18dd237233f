package cuemodel

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEndExport validates and projects a miniature five-gene model
// through the real cue binary.
func TestEndToEndExport(t *testing.T) {
	if _, err := exec.LookPath("cue"); err != nil {
		t.Skip("cue binary not installed")
	}

	root := t.TempDir()
	modelDir := filepath.Join(root, "model")
	require.NoError(t, os.MkdirAll(filepath.Join(modelDir, "cue.mod"), 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(modelDir, "cue.mod", "module.cue"),
		[]byte("module: \"lacuene.dev/model\"\nlanguage: version: \"v0.9.0\"\n"), 0o600))

	symbols := []string{"EDNRB", "PAX3", "RET", "SOX10", "TFAP2A"}

	writeFragment(t, modelDir, "clinvar.cue", symbols, func(b *strings.Builder, sym string) {
		b.WriteString("\t\t_in_clinvar: true\n")
		b.WriteString("\t\tpathogenic_count: 3\n")
	})
	writeFragment(t, modelDir, "pubmed.cue", symbols, func(b *strings.Builder, sym string) {
		b.WriteString("\t\t_in_pubmed: true\n")
		fmt.Fprintf(b, "\t\tpubmed_total: %d\n", len(sym)*10)
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	r := New("cue", "./model")
	ctx := context.Background()

	require.NoError(t, r.Vet(ctx))

	var genes map[string]map[string]any
	require.NoError(t, r.Export(ctx, "genes", &genes))
	require.Len(t, genes, len(symbols))
	for _, sym := range symbols {
		rec, ok := genes[sym]
		require.True(t, ok, sym)
		assert.Equal(t, float64(3), rec["pathogenic_count"], sym)
		assert.Equal(t, float64(len(sym)*10), rec["pubmed_total"], sym)
	}
}

func writeFragment(t *testing.T, dir, name string, symbols []string, fields func(*strings.Builder, string)) {
	t.Helper()
	var b strings.Builder
	b.WriteString("package froq\n\ngenes: {\n")
	for _, sym := range symbols {
		fmt.Fprintf(&b, "\t%q: {\n", sym)
		fields(&b, sym)
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o600))
}
