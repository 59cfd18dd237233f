package normalize

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// ClinicalTrials fetches active interventional study counts from the
// ClinicalTrials.gov v2 API.
type ClinicalTrials struct {
	// baseURL overrides the studies endpoint in tests.
	baseURL string
}

func (ClinicalTrials) Name() string      { return "clinicaltrials" }
func (ClinicalTrials) CacheFile() string { return "data/clinicaltrials/clinicaltrials_cache.json" }

const ctgovStudiesURL = "https://clinicaltrials.gov/api/v2/studies"

type ctgovRecord struct {
	ActiveTrials int `json:"active_trials"`
}

type ctgovResponse struct {
	TotalCount int `json:"totalCount"`
}

func (n *ClinicalTrials) Run(ctx context.Context, env *Env) error {
	env.Printf("clinicaltrials: counting trials for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[ctgovRecord](env.DataPath("clinicaltrials", "clinicaltrials_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("clinicaltrials")
	data := make(map[string]ctgovRecord)

	for _, symbol := range genes.Symbols() {
		if rec, ok := store.Get(symbol); ok {
			env.Printf("  %s: cached", symbol)
			data[symbol] = rec
			report.Cached(symbol, "")
			continue
		}

		rec, err := n.queryGene(ctx, env, symbol)
		if derr := env.Delay(ctx); derr != nil {
			return derr
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			env.Printf("  %s: FAILED (skipping): %v", symbol, err)
			report.Failed(symbol, err.Error())
			continue
		}

		env.Printf("  %s: %d active trials", symbol, rec.ActiveTrials)
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no ClinicalTrials.gov data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *ClinicalTrials) queryGene(ctx context.Context, env *Env, symbol string) (*ctgovRecord, error) {
	params := url.Values{
		"query.term":           {symbol},
		"filter.overallStatus": {"RECRUITING,ACTIVE_NOT_RECRUITING,ENROLLING_BY_INVITATION"},
		"countTotal":           {"true"},
		"pageSize":             {"1"},
	}

	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = ctgovStudiesURL
	}
	var resp ctgovResponse
	if err := env.Client.GetJSON(ctx, endpoint, params, jsonAccept(), &resp); err != nil {
		return nil, err
	}
	return &ctgovRecord{ActiveTrials: resp.TotalCount}, nil
}

func (n *ClinicalTrials) writeFragment(env *Env, data map[string]ctgovRecord) error {
	f := NewFragment(
		"ClinicalTrials.gov: active trial counts for neural crest genes.",
		"Source: ClinicalTrials.gov v2 studies API",
		fmt.Sprintf("Generated by the clinicaltrials normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_clinicaltrials", true)
		f.Int("active_trial_count", rec.ActiveTrials)
		f.CloseGene()
	}
	path := env.ModelPath("clinicaltrials.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("clinicaltrials: wrote %s", path)
	return nil
}
