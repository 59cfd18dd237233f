// Package site renders the static Grant Gap Finder pages.
//
// Two pages: index (query cards, landscape graph, gene detail table with
// embedded JSON payloads for client-side rendering) and about. Templates
// are embedded in the binary.
package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lacuene/lacuene/internal/cuemodel"
	"github.com/lacuene/lacuene/internal/snapshot"
	"github.com/lacuene/lacuene/internal/viz"
)

//go:embed templates/*.html
var templateFS embed.FS

// SourceInfo is one source's entry in the legend and about page.
type SourceInfo struct {
	Key   string
	Label string
	URL   string
	Count int
}

// sourceSiteOrder is the twelve sources the site reports, in display
// order, with their outbound links.
var sourceSiteOrder = []SourceInfo{
	{Key: "in_go", Label: "Gene Ontology", URL: "http://geneontology.org/"},
	{Key: "in_omim", Label: "OMIM", URL: "https://www.omim.org/"},
	{Key: "in_hpo", Label: "HPO", URL: "https://hpo.jax.org/"},
	{Key: "in_uniprot", Label: "UniProt", URL: "https://www.uniprot.org/"},
	{Key: "in_facebase", Label: "FaceBase", URL: "https://www.facebase.org/"},
	{Key: "in_clinvar", Label: "ClinVar", URL: "https://www.ncbi.nlm.nih.gov/clinvar/"},
	{Key: "in_pubmed", Label: "PubMed", URL: "https://pubmed.ncbi.nlm.nih.gov/"},
	{Key: "in_gnomad", Label: "gnomAD", URL: "https://gnomad.broadinstitute.org/"},
	{Key: "in_nih_reporter", Label: "NIH Reporter", URL: "https://reporter.nih.gov/"},
	{Key: "in_gtex", Label: "GTEx", URL: "https://gtexportal.org/"},
	{Key: "in_clinicaltrials", Label: "ClinicalTrials", URL: "https://clinicaltrials.gov/"},
	{Key: "in_string", Label: "STRING", URL: "https://string-db.org/"},
}

// GeneRow is one gene's detail row with every per-source flag flattened
// for the client-side filter keys.
type GeneRow struct {
	Symbol                 string                   `json:"symbol"`
	GO                     bool                     `json:"go"`
	OMIM                   bool                     `json:"omim"`
	HPO                    bool                     `json:"hpo"`
	UniProt                bool                     `json:"uniprot"`
	FaceBase               bool                     `json:"facebase"`
	ClinVar                bool                     `json:"clinvar"`
	PubMed                 bool                     `json:"pubmed"`
	Gnomad                 bool                     `json:"gnomad"`
	NIHReporter            bool                     `json:"nih_reporter"`
	GTEx                   bool                     `json:"gtex"`
	ClinicalTrials         bool                     `json:"clinicaltrials"`
	String                 bool                     `json:"string"`
	Count                  int                      `json:"count"`
	Syndrome               string                   `json:"syndrome"`
	Protein                string                   `json:"protein"`
	PubTotal               int                      `json:"pub_total"`
	PubRecent              int                      `json:"pub_recent"`
	Papers                 []string                 `json:"papers"`
	Pathogenic             int                      `json:"pathogenic"`
	PhenotypeCount         int                      `json:"phenotype_count"`
	Syndromes              []string                 `json:"syndromes"`
	PLIScore               *float64                 `json:"pli_score"`
	LOEUFScore             *float64                 `json:"loeuf_score"`
	GrantCount             int                      `json:"grant_count"`
	TrialCount             int                      `json:"trial_count"`
	TopTissues             []cuemodel.Tissue        `json:"top_tissues"`
	NIHProjects            []cuemodel.NIHProject    `json:"nih_projects"`
	StringPartners         []cuemodel.StringPartner `json:"string_partners"`
	CraniofacialExpression *float64                 `json:"craniofacial_expression"`
}

// LegendItem is one role's entry in the graph legend.
type LegendItem struct {
	Role  string
	Label string
	Color string
}

// Data is everything the two pages render from.
type Data struct {
	Total          int
	SourceCount    int
	Sources        []SourceInfo
	GeneRows       []GeneRow
	CriticalGaps   []cuemodel.FundingGap
	CriticalCount  int
	FundingSummary map[string]int
	Snapshots      []snapshot.Snapshot
	Legend         []LegendItem
	Viz            viz.Graph
	Weighted       []cuemodel.WeightedGap
	Anomalies      []cuemodel.Anomaly
}

// BuildGeneRows flattens the model exports into sorted detail rows.
func BuildGeneRows(sources map[string]cuemodel.SourceFlags, geneData map[string]cuemodel.Gene) []GeneRow {
	symbols := make([]string, 0, len(sources))
	for s := range sources {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rows := make([]GeneRow, 0, len(symbols))
	for _, symbol := range symbols {
		flags := sources[symbol]
		gene := geneData[symbol]

		synShort := ""
		if len(gene.OMIMSyndromes) > 0 {
			synShort = strings.TrimSpace(strings.SplitN(gene.OMIMSyndromes[0], ",", 2)[0])
		}

		rows = append(rows, GeneRow{
			Symbol:                 symbol,
			GO:                     flags["in_go"],
			OMIM:                   flags["in_omim"],
			HPO:                    flags["in_hpo"],
			UniProt:                flags["in_uniprot"],
			FaceBase:               flags["in_facebase"],
			ClinVar:                flags["in_clinvar"],
			PubMed:                 flags["in_pubmed"],
			Gnomad:                 flags["in_gnomad"],
			NIHReporter:            flags["in_nih_reporter"],
			GTEx:                   flags["in_gtex"],
			ClinicalTrials:         flags["in_clinicaltrials"],
			String:                 flags["in_string"],
			Count:                  flags.Count(),
			Syndrome:               synShort,
			Protein:                gene.ProteinName,
			PubTotal:               gene.PubmedTotal,
			PubRecent:              gene.PubmedRecent,
			Papers:                 gene.PubmedPapers,
			Pathogenic:             gene.PathogenicCount,
			PhenotypeCount:         len(gene.Phenotypes),
			Syndromes:              gene.OMIMSyndromes,
			PLIScore:               gene.PLIScore,
			LOEUFScore:             gene.LOEUFScore,
			GrantCount:             gene.ActiveGrantCount,
			TrialCount:             gene.ActiveTrialCount,
			TopTissues:             gene.TopTissues,
			NIHProjects:            gene.NIHProjects,
			StringPartners:         gene.StringPartners,
			CraniofacialExpression: gene.CraniofacialExpression,
		})
	}
	return rows
}

// BuildSources fills the per-source counts into the standard source list.
func BuildSources(sources map[string]cuemodel.SourceFlags) []SourceInfo {
	out := make([]SourceInfo, len(sourceSiteOrder))
	copy(out, sourceSiteOrder)
	for i := range out {
		for _, flags := range sources {
			if flags[out[i].Key] {
				out[i].Count++
			}
		}
	}
	return out
}

// BuildLegend collects the distinct roles present in the graph's nodes.
func BuildLegend(g viz.Graph) []LegendItem {
	seen := make(map[string]LegendItem)
	for _, n := range g.Nodes {
		if _, ok := seen[n.Data.Type]; !ok {
			seen[n.Data.Type] = LegendItem{
				Role:  n.Data.Type,
				Label: n.Data.RoleLabel,
				Color: n.Data.Color,
			}
		}
	}
	roles := make([]string, 0, len(seen))
	for r := range seen {
		roles = append(roles, r)
	}
	sort.Strings(roles)

	items := make([]LegendItem, 0, len(roles))
	for _, r := range roles {
		items = append(items, seen[r])
	}
	return items
}

// CurrentSnapshot derives today's snapshot from the model exports.
func CurrentSnapshot(date string, total int, critical []cuemodel.FundingGap, sources map[string]cuemodel.SourceFlags) snapshot.Snapshot {
	gapSymbols := make([]string, 0, len(critical))
	for _, g := range critical {
		gapSymbols = append(gapSymbols, g.Symbol)
	}
	sort.Strings(gapSymbols)

	var fbSymbols []string
	for symbol, flags := range sources {
		if flags["in_facebase"] {
			fbSymbols = append(fbSymbols, symbol)
		}
	}
	sort.Strings(fbSymbols)

	return snapshot.Snapshot{
		Date:            date,
		TotalGenes:      total,
		CriticalCount:   len(critical),
		GapSymbols:      gapSymbols,
		FaceBaseSymbols: fbSymbols,
	}
}

// Generator renders the site templates.
type Generator struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Generator, error) {
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"jsonPayload": jsonPayload,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse site templates: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// RenderIndex renders the main page.
func (g *Generator) RenderIndex(data Data) ([]byte, error) {
	return g.render("index.html", data)
}

// RenderAbout renders the about page.
func (g *Generator) RenderAbout(data Data) ([]byte, error) {
	return g.render("about.html", data)
}

func (g *Generator) render(name string, data Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Write renders both pages into outDir.
func (g *Generator) Write(outDir string, data Data) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	index, err := g.RenderIndex(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.html"), index, 0o600); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	about, err := g.RenderAbout(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "about.html"), about, 0o600); err != nil {
		return fmt.Errorf("write about: %w", err)
	}
	return nil
}

// jsonPayload serializes a value for an embedded <script> payload.
func jsonPayload(v any) (template.JS, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	// </script> inside string data would end the tag early.
	safe := strings.ReplaceAll(string(raw), "</", `<\/`)
	return template.JS(safe), nil
}
