// Package report renders the markdown digest and plain-text summary from
// model exports and snapshot history.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lacuene/lacuene/internal/cuemodel"
	"github.com/lacuene/lacuene/internal/snapshot"
)

// sourceOrder lists every presence flag the digest and summary report,
// in display order.
var sourceOrder = []string{
	"in_go", "in_omim", "in_hpo", "in_uniprot", "in_facebase",
	"in_clinvar", "in_pubmed", "in_gnomad", "in_nih_reporter", "in_gtex",
	"in_clinicaltrials", "in_string", "in_orphanet", "in_opentargets",
	"in_models", "in_structures",
}

var sourceLabels = map[string]string{
	"in_go":             "Gene Ontology",
	"in_omim":           "OMIM",
	"in_hpo":            "HPO",
	"in_uniprot":        "UniProt",
	"in_facebase":       "FaceBase",
	"in_clinvar":        "ClinVar",
	"in_pubmed":         "PubMed",
	"in_gnomad":         "gnomAD",
	"in_nih_reporter":   "NIH Reporter",
	"in_gtex":           "GTEx",
	"in_clinicaltrials": "ClinicalTrials",
	"in_string":         "STRING",
	"in_orphanet":       "Orphanet",
	"in_opentargets":    "Open Targets",
	"in_models":         "MGI/ZFIN",
	"in_structures":     "AlphaFold/PDB",
}

// DigestInput is everything the digest renders from.
type DigestInput struct {
	// Date is the generation date in ISO form.
	Date      string
	GapReport cuemodel.GapReport
	Sources   map[string]cuemodel.SourceFlags
	Snapshots []snapshot.Snapshot
	// Derived is the optional expanded-pipeline payload; nil renders the
	// no-data notice.
	Derived *Derived
}

// Digest renders the weekly markdown digest.
func Digest(in DigestInput) string {
	var b strings.Builder
	total := in.GapReport.Total()

	fmt.Fprintf(&b, "## Weekly Pipeline Digest — %s\n\n", in.Date)
	fmt.Fprintf(&b, "**%d genes** across **%d sources**\n\n", total, len(sourceOrder))

	b.WriteString("### Source Coverage\n\n")
	b.WriteString("| Source | Coverage | % |\n")
	b.WriteString("|--------|----------|---|\n")
	counts := sourceCounts(in.Sources)
	for _, key := range sourceOrder {
		count := counts[key]
		pct := 0
		if total > 0 {
			pct = count * 100 / total
		}
		bar := strings.Repeat("█", pct/10)
		fmt.Fprintf(&b, "| %s | %d/%d | %s %d%% |\n", sourceLabels[key], count, total, bar, pct)
	}
	b.WriteString("\n")

	b.WriteString("### Gaps\n\n")
	fmt.Fprintf(&b, "**%d** genes with OMIM disease association but no FaceBase experimental data.\n\n",
		len(in.GapReport.ResearchGaps))

	writeChanges(&b, in.Snapshots)
	writeMissing(&b, in.GapReport.Summary)
	writeDerived(&b, in.Derived)

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Generated by lacuene digest on %s*\n", in.Date)
	return b.String()
}

func writeChanges(b *strings.Builder, snaps []snapshot.Snapshot) {
	if len(snaps) < 2 {
		b.WriteString("### Changes\n\n")
		b.WriteString("First snapshot recorded. Diffs will appear after the next run.\n\n")
		return
	}

	prev, curr := snaps[len(snaps)-2], snaps[len(snaps)-1]
	diff := snapshot.Compare(prev, curr)

	fmt.Fprintf(b, "### Changes Since %s\n\n", prev.Date)

	if len(diff.GapsClosed) > 0 {
		fmt.Fprintf(b, "**Gaps closed (%d):** %s\n", len(diff.GapsClosed), codeList(diff.GapsClosed))
	}
	if len(diff.GapsOpened) > 0 {
		fmt.Fprintf(b, "**Gaps opened (%d):** %s\n", len(diff.GapsOpened), codeList(diff.GapsOpened))
	}
	if len(diff.CoverageGained) > 0 {
		fmt.Fprintf(b, "**New FaceBase coverage (%d):** %s\n", len(diff.CoverageGained), codeList(diff.CoverageGained))
	}
	if len(diff.CoverageLost) > 0 {
		fmt.Fprintf(b, "**Lost FaceBase coverage (%d):** %s\n", len(diff.CoverageLost), codeList(diff.CoverageLost))
	}
	if len(diff.GapsClosed)+len(diff.GapsOpened)+len(diff.CoverageGained)+len(diff.CoverageLost) == 0 {
		b.WriteString("No changes detected since last snapshot.\n")
	}

	if diff.TotalDelta != 0 {
		sign := ""
		if diff.TotalDelta > 0 {
			sign = "+"
		}
		fmt.Fprintf(b, "\nGene count: %d → %d (%s%d)\n", prev.TotalGenes, curr.TotalGenes, sign, diff.TotalDelta)
	}
	b.WriteString("\n")
}

func writeMissing(b *strings.Builder, summary map[string]int) {
	b.WriteString("### Missing Data\n\n")

	type missing struct {
		name  string
		count int
	}
	var rows []missing
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, "missing_") && strings.HasSuffix(key, "_count") && summary[key] > 0 {
			name := strings.TrimSuffix(strings.TrimPrefix(key, "missing_"), "_count")
			rows = append(rows, missing{name, summary[key]})
		}
	}

	if len(rows) == 0 {
		b.WriteString("All sources have complete coverage.\n\n")
		return
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].count > rows[j].count })
	for _, row := range rows {
		fmt.Fprintf(b, "- **%s**: %d genes missing\n", row.name, row.count)
	}
	b.WriteString("\n")
}

func codeList(symbols []string) string {
	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

func sourceCounts(sources map[string]cuemodel.SourceFlags) map[string]int {
	counts := make(map[string]int, len(sourceOrder))
	for _, key := range sourceOrder {
		for _, flags := range sources {
			if flags[key] {
				counts[key]++
			}
		}
	}
	return counts
}

// Derived is the expanded-pipeline payload loaded from a sibling derived
// directory.
type Derived struct {
	LastRun           string
	CandidateCount    int
	Candidates        []Candidate
	ScoreDistribution map[string]int
	// CraniofacialPubs maps candidate symbol to its craniofacial PubMed
	// count from the enrichment file.
	CraniofacialPubs map[string]int
}

// Candidate is one gap candidate from the expanded pipeline.
type Candidate struct {
	Symbol          string            `json:"symbol"`
	Name            string            `json:"name"`
	ConfidenceScore float64           `json:"confidence_score"`
	Evidence        CandidateEvidence `json:"evidence"`
}

// CandidateEvidence carries the per-source counts behind a candidate.
type CandidateEvidence struct {
	HPOPhenotypeCount     int `json:"hpo_phenotype_count"`
	OrphanetDisorderCount int `json:"orphanet_disorder_count"`
}

// LoadDerived reads the expanded-pipeline artifacts from dir. A missing
// gap-candidates file means no derived data, not an error.
func LoadDerived(dir string) (*Derived, error) {
	gapPath := filepath.Join(dir, "gap_candidates.json")
	raw, err := os.ReadFile(gapPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gap candidates: %w", err)
	}

	var gapData struct {
		CandidateCount    int            `json:"candidate_count"`
		Candidates        []Candidate    `json:"candidates"`
		ScoreDistribution map[string]int `json:"score_distribution"`
	}
	if err := json.Unmarshal(raw, &gapData); err != nil {
		return nil, fmt.Errorf("parse gap candidates: %w", err)
	}

	d := &Derived{
		CandidateCount:    gapData.CandidateCount,
		Candidates:        gapData.Candidates,
		ScoreDistribution: gapData.ScoreDistribution,
		CraniofacialPubs:  make(map[string]int),
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "candidate_enrichment.json")); err == nil {
		var enrich struct {
			Candidates []struct {
				Symbol                  string `json:"symbol"`
				PubmedCraniofacialCount int    `json:"pubmed_craniofacial_count"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(raw, &enrich); err == nil {
			for _, c := range enrich.Candidates {
				d.CraniofacialPubs[c.Symbol] = c.PubmedCraniofacialCount
			}
		}
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "pipeline_status.json")); err == nil {
		var status struct {
			LastRun string `json:"last_run"`
		}
		if err := json.Unmarshal(raw, &status); err == nil {
			d.LastRun = status.LastRun
		}
	}

	return d, nil
}

func writeDerived(b *strings.Builder, d *Derived) {
	if d == nil {
		b.WriteString("### Expanded Pipeline\n\n")
		b.WriteString("No derived data available. Run the overnight expanded pipeline.\n\n")
		return
	}

	b.WriteString("### Expanded Pipeline\n\n")
	if d.LastRun != "" {
		fmt.Fprintf(b, "*Last run: %s*\n\n", d.LastRun)
	}
	fmt.Fprintf(b, "**%d gap candidates** identified with disease signal not in curated set.\n", d.CandidateCount)
	if len(d.ScoreDistribution) > 0 {
		high := d.ScoreDistribution["high (7+)"]
		med := d.ScoreDistribution["medium (4-6.9)"]
		fmt.Fprintf(b, " (%d high-confidence, %d medium)\n", high, med)
	}
	b.WriteString("\n")

	top := make([]Candidate, len(d.Candidates))
	copy(top, d.Candidates)
	sort.SliceStable(top, func(i, j int) bool { return top[i].ConfidenceScore > top[j].ConfidenceScore })
	if len(top) > 10 {
		top = top[:10]
	}

	if len(top) > 0 {
		b.WriteString("| Gene | Score | HPO | Orphanet | CF Pubs | Name |\n")
		b.WriteString("|------|------:|----:|---------:|--------:|------|\n")
		for _, c := range top {
			pubs := "—"
			if n, ok := d.CraniofacialPubs[c.Symbol]; ok {
				pubs = fmt.Sprintf("%d", n)
			}
			name := c.Name
			if len(name) > 40 {
				name = name[:40]
			}
			fmt.Fprintf(b, "| `%s` | %g | %d | %d | %s | %s |\n",
				c.Symbol, c.ConfidenceScore, c.Evidence.HPOPhenotypeCount,
				c.Evidence.OrphanetDisorderCount, pubs, name)
		}
		b.WriteString("\n")
		if len(d.CraniofacialPubs) > 0 {
			b.WriteString("*CF Pubs = PubMed articles mentioning gene + craniofacial terms*\n\n")
		}
	}
}
