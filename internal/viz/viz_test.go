package viz

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacuene/lacuene/internal/cuemodel"
)

func testConfig() Config {
	return Config{
		Roles: map[string]string{
			"SOX9": "craniofacial",
			"PAX3": "nc_specifier",
		},
		Colors: map[string]string{
			"craniofacial": "#f85149",
			"nc_specifier": "#a371f7",
			"patterning":   "#f85149",
			"expanded":     "#484f58",
		},
		Labels: map[string]string{
			"craniofacial": "Craniofacial",
			"nc_specifier": "NC specifier",
			"patterning":   "Patterning / disease",
			"expanded":     "Expanded",
		},
		DefaultRole:  "patterning",
		PhenotypeMax: 5,
		PathwayMax:   8,
	}
}

func flags(n int) cuemodel.SourceFlags {
	f := cuemodel.SourceFlags{}
	keys := []string{"in_go", "in_omim", "in_hpo", "in_uniprot", "in_facebase"}
	for i := 0; i < n; i++ {
		f[keys[i]] = true
	}
	return f
}

func TestNodeSize(t *testing.T) {
	assert.Equal(t, 10, nodeSize(0))
	assert.Equal(t, 28, nodeSize(100), "log scale: 10+ln(101)*4 rounds to 28")
	assert.Equal(t, 35, nodeSize(1000000), "capped at 35")
}

func TestPubTrend(t *testing.T) {
	v, trend := pubTrend(0, 0)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, "none", trend)

	v, trend = pubTrend(100, 60)
	assert.Equal(t, 0.6, v)
	assert.Equal(t, "rising", trend)

	v, trend = pubTrend(100, 30)
	assert.Equal(t, 0.3, v)
	assert.Equal(t, "stable", trend)

	v, trend = pubTrend(100, 10)
	assert.Equal(t, 0.1, v)
	assert.Equal(t, "declining", trend)
}

func TestBuildNodesRolesAndColors(t *testing.T) {
	cfg := testConfig()
	sources := map[string]cuemodel.SourceFlags{
		"SOX9":  flags(5),
		"PAX3":  flags(3),
		"OTHER": flags(1),
	}
	geneData := map[string]cuemodel.Gene{
		"SOX9": {PubmedTotal: 100, PubmedRecent: 60},
	}

	g := Build(cfg, sources, geneData, nil)
	require.Len(t, g.Nodes, 3)

	byID := make(map[string]NodeData)
	for _, n := range g.Nodes {
		byID[n.Data.ID] = n.Data
	}

	assert.Equal(t, "craniofacial", byID["SOX9"].Type)
	assert.Equal(t, "#f85149", byID["SOX9"].Color)
	assert.Equal(t, 5, byID["SOX9"].SourceCount)
	assert.Equal(t, "rising", byID["SOX9"].Trend)

	// Unmapped symbol falls into the default bucket.
	assert.Equal(t, "patterning", byID["OTHER"].Type)
	assert.Equal(t, "Patterning / disease", byID["OTHER"].RoleLabel)
	assert.Equal(t, "none", byID["OTHER"].Trend)
}

func TestPhenotypeEdgeCardinalityWindow(t *testing.T) {
	cfg := testConfig()
	geneData := map[string]cuemodel.Gene{
		"A": {Phenotypes: []string{"solo", "pair", "universal"}},
		"B": {Phenotypes: []string{"pair", "universal"}},
		"C": {Phenotypes: []string{"universal"}},
		"D": {Phenotypes: []string{"universal"}},
		"E": {Phenotypes: []string{"universal"}},
		"F": {Phenotypes: []string{"universal"}},
	}
	cfg.PhenotypeMax = 5

	edges := buildPhenotypeEdges(cfg, geneData)
	require.Len(t, edges, 1, "solo (1 sharer) and universal (6 sharers) never edge")
	assert.Equal(t, "A", edges[0].Data.Source)
	assert.Equal(t, "B", edges[0].Data.Target)
	assert.Equal(t, "pair", edges[0].Data.Label)
}

func TestSyndromeEdgesMatchOnNameBeforeComma(t *testing.T) {
	geneData := map[string]cuemodel.Gene{
		"FGFR2": {OMIMSyndromes: []string{"Crouzon syndrome, 123500"}},
		"FGFR3": {OMIMSyndromes: []string{"Crouzon syndrome, 612247"}},
		"SOX9":  {OMIMSyndromes: []string{"Campomelic dysplasia, 114290"}},
	}

	edges := buildSyndromeEdges(geneData)
	require.Len(t, edges, 1)
	assert.Equal(t, EdgeSharedSyndrome, edges[0].Data.Type)
	assert.Equal(t, "Crouzon syndrome", edges[0].Data.Label)
}

func TestPathwayEdgesOnlyBiologicalProcess(t *testing.T) {
	cfg := testConfig()
	geneData := map[string]cuemodel.Gene{
		"A": {GOTerms: []cuemodel.GOTerm{
			{GOID: "GO:1", TermName: "neural crest cell migration", Aspect: "P"},
			{GOID: "GO:2", TermName: "nucleus", Aspect: "C"},
		}},
		"B": {GOTerms: []cuemodel.GOTerm{
			{GOID: "GO:1", TermName: "neural crest cell migration", Aspect: "P"},
			{GOID: "GO:2", TermName: "nucleus", Aspect: "C"},
		}},
	}

	edges := buildPathwayEdges(cfg, geneData)
	require.Len(t, edges, 1, "cellular-component terms never edge")
	assert.Equal(t, EdgeSharedPathway, edges[0].Data.Type)
}

func TestEdgesDeduplicateByPairAndType(t *testing.T) {
	geneData := map[string]cuemodel.Gene{
		"A": {OMIMSyndromes: []string{"Waardenburg syndrome, 1", "Waardenburg variant, 2"}},
		"B": {OMIMSyndromes: []string{"Waardenburg syndrome, 3", "Waardenburg variant, 4"}},
	}

	// Two distinct shared syndromes, but one surviving edge per pair per
	// type; only the first attribute's label survives.
	edges := buildSyndromeEdges(geneData)
	require.Len(t, edges, 1)
	assert.Equal(t, "Waardenburg syndrome", edges[0].Data.Label)
}

func TestPPIEdges(t *testing.T) {
	geneData := map[string]cuemodel.Gene{
		"SOX10": {StringPartners: []cuemodel.StringPartner{
			{Symbol: "PAX3", Score: 999},
			{Symbol: "NOTINSET", Score: 900},
		}},
		"PAX3": {StringPartners: []cuemodel.StringPartner{
			{Symbol: "SOX10", Score: 999},
		}},
	}

	edges := buildPPIEdges(geneData)
	require.Len(t, edges, 1, "reciprocal partners deduplicate, external partners drop")
	assert.Equal(t, "PAX3", edges[0].Data.Source)
	assert.Equal(t, "SOX10", edges[0].Data.Target)
	assert.Equal(t, "PAX3-SOX10 (999)", edges[0].Data.Label)
}

func TestExpandedNodes(t *testing.T) {
	cfg := testConfig()
	sources := map[string]cuemodel.SourceFlags{"SOX9": flags(2)}
	expanded := []ExpandedGene{
		{Symbol: "SOX9"},   // curated wins
		{Symbol: "ZNF462"}, // family excluded
		{Symbol: "TBX22"},
		{Symbol: "TBX22"}, // duplicate entry
		{Symbol: ""},
	}

	g := Build(cfg, sources, nil, expanded)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, 1, g.Metadata.ExpandedCount)

	var tbx *NodeData
	for i := range g.Nodes {
		if g.Nodes[i].Data.ID == "TBX22" {
			tbx = &g.Nodes[i].Data
		}
	}
	require.NotNil(t, tbx)
	assert.Equal(t, "expanded", tbx.Type)
	assert.Equal(t, 8, tbx.Size)
	assert.Equal(t, 0.5, tbx.Opacity)
	assert.Equal(t, "none", tbx.Trend)

	// SOX9 appears exactly once, attributed as curated.
	count := 0
	for _, n := range g.Nodes {
		if n.Data.ID == "SOX9" {
			count++
			assert.Equal(t, "craniofacial", n.Data.Type)
		}
	}
	assert.Equal(t, 1, count)
}

func TestLoadExpanded(t *testing.T) {
	got, err := LoadExpanded(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, got, "absent expanded list degrades to empty tier")

	path := filepath.Join(t.TempDir(), "expanded.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"symbol":"TBX22"},{"symbol":"SPRY1"}]`), 0o600))
	got, err = LoadExpanded(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGraphSerializesCytoscapeShape(t *testing.T) {
	cfg := testConfig()
	g := Build(cfg, map[string]cuemodel.SourceFlags{"SOX9": flags(1)}, nil, nil)

	raw, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"nodes":[{"data":{"id":"SOX9"`)
	assert.Contains(t, string(raw), `"metadata":`)
	assert.NotContains(t, string(raw), `"opacity"`, "curated nodes omit opacity")
}
