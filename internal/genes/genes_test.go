package genes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsClosedAndComplete(t *testing.T) {
	t.Parallel()

	syms := Symbols()
	assert.Len(t, syms, len(Registry))
	assert.IsIncreasing(t, syms)

	for sym, x := range Registry {
		assert.NotEmpty(t, x.NCBI, "%s missing NCBI ID", sym)
		assert.NotEmpty(t, x.UniProt, "%s missing UniProt accession", sym)
		assert.NotEmpty(t, x.OMIM, "%s missing OMIM number", sym)
	}
}

func TestEveryGeneHasExactlyOneRole(t *testing.T) {
	t.Parallel()

	seen := map[string]string{}
	for role, symbols := range Roles {
		for _, s := range symbols {
			prev, dup := seen[s]
			require.False(t, dup, "%s classified as both %s and %s", s, prev, role)
			seen[s] = role
			_, known := Registry[s]
			assert.True(t, known, "role table references unknown symbol %s", s)
		}
	}
	for sym := range Registry {
		assert.NotEmpty(t, RoleOf(sym), "%s has no role", sym)
	}
}

func TestReverseLookups(t *testing.T) {
	t.Parallel()

	sym, ok := SymbolForNCBI("6662")
	require.True(t, ok)
	assert.Equal(t, "SOX9", sym)

	sym, ok = SymbolForUniProt("O14896")
	require.True(t, ok)
	assert.Equal(t, "IRF6", sym)

	sym, ok = SymbolForOMIM("164761")
	require.True(t, ok)
	assert.Equal(t, "RET", sym)

	_, ok = SymbolForNCBI("0")
	assert.False(t, ok)
}

func TestExportCUE(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model", "gene_list.cue")
	require.NoError(t, ExportCUE(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "package froq\n"))
	assert.Contains(t, text, `genes: "SOX9": symbol: "SOX9"`)
	assert.Contains(t, text, `genes: "NKX2-5": symbol: "NKX2-5"`)
	assert.Equal(t, len(Registry), strings.Count(text, "symbol:"))
}
