package cuemodel

import "context"

// SourceFlags is one gene's per-source presence map, keyed by flag name
// (in_go, in_omim, ...). Flags are derived by the model, never hand-set.
type SourceFlags map[string]bool

// Count returns how many flags are set.
func (f SourceFlags) Count() int {
	n := 0
	for _, v := range f {
		if v {
			n++
		}
	}
	return n
}

// GOTerm is one Gene Ontology annotation in the merged model.
type GOTerm struct {
	GOID     string `json:"go_id"`
	TermName string `json:"term_name"`
	Aspect   string `json:"aspect"`
}

// StringPartner is one protein interaction partner with its confidence
// score on the 0-1000 scale.
type StringPartner struct {
	Symbol string `json:"symbol"`
	Score  int    `json:"score"`
}

// Tissue is one GTEx expression entry.
type Tissue struct {
	Tissue string  `json:"tissue"`
	TPM    float64 `json:"median_tpm"`
}

// NIHProject is one funded project from the merged model.
type NIHProject struct {
	Title      string `json:"title"`
	FiscalYear int    `json:"fiscal_year"`
}

// Gene is the merged per-gene record exported from the model. Fields a
// source never contributed decode to their zero values.
type Gene struct {
	Phenotypes             []string        `json:"phenotypes"`
	OMIMSyndromes          []string        `json:"omim_syndromes"`
	GOTerms                []GOTerm        `json:"go_terms"`
	StringPartners         []StringPartner `json:"string_partners"`
	PubmedTotal            int             `json:"pubmed_total"`
	PubmedRecent           int             `json:"pubmed_recent"`
	PubmedPapers           []string        `json:"pubmed_papers"`
	ProteinName            string          `json:"protein_name"`
	PathogenicCount        int             `json:"pathogenic_count"`
	PLIScore               *float64        `json:"pli_score"`
	LOEUFScore             *float64        `json:"loeuf_score"`
	ActiveGrantCount       int             `json:"active_grant_count"`
	ActiveTrialCount       int             `json:"active_trial_count"`
	TopTissues             []Tissue        `json:"top_tissues"`
	NIHProjects            []NIHProject    `json:"nih_reporter_projects"`
	CraniofacialExpression *float64        `json:"craniofacial_expression"`
}

// ResearchGap is one gene with disease association but no experimental
// coverage.
type ResearchGap struct {
	Symbol    string   `json:"symbol"`
	Syndromes []string `json:"syndromes"`
}

// GapReport is the model's gap projection.
type GapReport struct {
	Summary      map[string]int `json:"summary"`
	ResearchGaps []ResearchGap  `json:"research_gaps"`
}

// Total returns the gene count from the summary block.
func (g GapReport) Total() int { return g.Summary["total"] }

// FundingGap is one critical funding gap entry.
type FundingGap struct {
	Symbol     string   `json:"symbol"`
	Syndromes  []string `json:"syndromes"`
	GrantCount int      `json:"active_grant_count"`
	TrialCount int      `json:"active_trial_count"`
}

// FundingGaps is the model's funding projection.
type FundingGaps struct {
	Critical []FundingGap   `json:"critical"`
	Summary  map[string]int `json:"summary"`
}

// WeightedGap is one entry of the weighted priority projection.
type WeightedGap struct {
	Symbol        string  `json:"symbol"`
	PriorityScore float64 `json:"priority_score"`
}

// Anomaly is one cross-source inconsistency flagged by the model.
type Anomaly struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// GeneSources exports the per-gene source-presence flags.
func (r *Runner) GeneSources(ctx context.Context) (map[string]SourceFlags, error) {
	var out map[string]SourceFlags
	if err := r.Export(ctx, "gene_sources", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Genes exports the merged per-gene records.
func (r *Runner) Genes(ctx context.Context) (map[string]Gene, error) {
	var out map[string]Gene
	if err := r.Export(ctx, "genes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GapReport exports the research-gap projection.
func (r *Runner) GapReport(ctx context.Context) (GapReport, error) {
	var out GapReport
	err := r.Export(ctx, "gap_report", &out)
	return out, err
}

// FundingGaps exports the funding-gap projection.
func (r *Runner) FundingGaps(ctx context.Context) (FundingGaps, error) {
	var out FundingGaps
	err := r.Export(ctx, "funding_gaps", &out)
	return out, err
}

// WeightedGaps exports the weighted priority projection.
func (r *Runner) WeightedGaps(ctx context.Context) ([]WeightedGap, error) {
	var out []WeightedGap
	err := r.Export(ctx, "weighted_gaps", &out)
	return out, err
}

// Anomalies exports the cross-source anomaly projection.
func (r *Runner) Anomalies(ctx context.Context) ([]Anomaly, error) {
	var out []Anomaly
	err := r.Export(ctx, "anomalies", &out)
	return out, err
}
