package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacuene/lacuene/internal/cuemodel"
	"github.com/lacuene/lacuene/internal/viz"
)

func sampleData() Data {
	sources := map[string]cuemodel.SourceFlags{
		"SOX9": {"in_go": true, "in_omim": true, "in_facebase": true},
		"PAX3": {"in_go": true, "in_omim": true},
	}
	geneData := map[string]cuemodel.Gene{
		"SOX9": {
			OMIMSyndromes: []string{"Campomelic dysplasia, 114290"},
			ProteinName:   "Transcription factor SOX-9",
			PubmedTotal:   120,
			PubmedRecent:  40,
		},
	}
	graph := viz.Build(viz.DefaultConfig(), sources, geneData, nil)

	critical := []cuemodel.FundingGap{{Symbol: "PAX3", Syndromes: []string{"Waardenburg syndrome, type 1"}}}

	return Data{
		Total:         2,
		SourceCount:   len(sourceSiteOrder),
		Sources:       BuildSources(sources),
		GeneRows:      BuildGeneRows(sources, geneData),
		CriticalGaps:  critical,
		CriticalCount: 1,
		Viz:           graph,
		Legend:        BuildLegend(graph),
	}
}

func TestBuildGeneRows(t *testing.T) {
	data := sampleData()
	require.Len(t, data.GeneRows, 2)

	// Rows are sorted by symbol.
	assert.Equal(t, "PAX3", data.GeneRows[0].Symbol)
	assert.Equal(t, "SOX9", data.GeneRows[1].Symbol)

	sox9 := data.GeneRows[1]
	assert.True(t, sox9.GO)
	assert.True(t, sox9.FaceBase)
	assert.False(t, sox9.ClinVar)
	assert.Equal(t, 3, sox9.Count)
	assert.Equal(t, "Campomelic dysplasia", sox9.Syndrome)
	assert.Equal(t, "Transcription factor SOX-9", sox9.Protein)
	assert.Equal(t, 120, sox9.PubTotal)
}

func TestBuildSourcesCounts(t *testing.T) {
	data := sampleData()
	byKey := make(map[string]SourceInfo)
	for _, s := range data.Sources {
		byKey[s.Key] = s
	}
	assert.Equal(t, 2, byKey["in_go"].Count)
	assert.Equal(t, 1, byKey["in_facebase"].Count)
	assert.Equal(t, 0, byKey["in_string"].Count)
}

func TestBuildLegendDistinctRoles(t *testing.T) {
	data := sampleData()
	require.NotEmpty(t, data.Legend)
	seen := make(map[string]bool)
	for _, item := range data.Legend {
		assert.False(t, seen[item.Role])
		seen[item.Role] = true
		assert.NotEmpty(t, item.Color)
	}
}

func TestCurrentSnapshot(t *testing.T) {
	sources := map[string]cuemodel.SourceFlags{
		"SOX9": {"in_facebase": true},
		"PAX3": {},
	}
	critical := []cuemodel.FundingGap{{Symbol: "ZEB2"}, {Symbol: "ALX1"}}

	snap := CurrentSnapshot("2026-08-28", 95, critical, sources)
	assert.Equal(t, "2026-08-28", snap.Date)
	assert.Equal(t, 95, snap.TotalGenes)
	assert.Equal(t, 2, snap.CriticalCount)
	assert.Equal(t, []string{"ALX1", "ZEB2"}, snap.GapSymbols)
	assert.Equal(t, []string{"SOX9"}, snap.FaceBaseSymbols)
}

func TestRenderPages(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	data := sampleData()
	index, err := g.RenderIndex(data)
	require.NoError(t, err)
	html := string(index)

	assert.Contains(t, html, "Grant Gap Finder")
	assert.Contains(t, html, "SOX9")
	assert.Contains(t, html, `const vizdata =`)
	assert.Contains(t, html, `"nodes":[{"data":`)

	about, err := g.RenderAbout(data)
	require.NoError(t, err)
	assert.Contains(t, string(about), "About lacuene")
	assert.Contains(t, string(about), "Gene Ontology")
}

func TestWritePages(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, g.Write(dir, sampleData()))

	for _, name := range []string{"index.html", "about.html"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), "<!DOCTYPE html>"))
	}
}

func TestJSONPayloadEscapesScriptClose(t *testing.T) {
	out, err := jsonPayload(map[string]string{"x": "</script><script>alert(1)"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "</script>")
}
