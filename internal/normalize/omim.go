package normalize

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacuene/lacuene/internal/genes"
)

// OMIM fetches phenotype maps from the OMIM entry API, keyed by MIM
// number. Requires an API key in the configuration. No cache file; the
// normalizer always runs.
type OMIM struct{}

func (OMIM) Name() string      { return "omim" }
func (OMIM) CacheFile() string { return "" }

const omimEntryURL = "https://api.omim.org/api/entry"

type omimResponse struct {
	Omim struct {
		EntryList []struct {
			Entry struct {
				GeneMap struct {
					PhenotypeMapList []struct {
						PhenotypeMap struct {
							Phenotype string `json:"phenotype"`
						} `json:"phenotypeMap"`
					} `json:"phenotypeMapList"`
				} `json:"geneMap"`
			} `json:"entry"`
		} `json:"entryList"`
	} `json:"omim"`
}

func (n *OMIM) Run(ctx context.Context, env *Env) error {
	apiKey := env.Cfg.Sources.OMIMAPIKey
	if apiKey == "" {
		return fmt.Errorf("omim: API key not configured (set LACUENE_SOURCES_OMIM_API_KEY)")
	}

	env.Printf("omim: querying OMIM phenotype maps for %d neural crest genes...", len(genes.Registry))

	report := NewReport("omim")
	data := make(map[string][]string)

	for _, symbol := range genes.Symbols() {
		mim := genes.Registry[symbol].OMIM

		syndromes, err := n.queryMIM(ctx, env, apiKey, mim)
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

		env.Printf("  %s: %d syndromes", symbol, len(syndromes))
		data[symbol] = syndromes
		report.OK(symbol, "")
	}

	if len(data) == 0 {
		return fmt.Errorf("no OMIM data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *OMIM) queryMIM(ctx context.Context, env *Env, apiKey, mim string) ([]string, error) {
	params := url.Values{
		"mimNumber": {mim},
		"include":   {"geneMap"},
		"format":    {"json"},
		"apiKey":    {apiKey},
	}

	var resp omimResponse
	if err := env.Client.GetJSON(ctx, omimEntryURL, params, jsonAccept(), &resp); err != nil {
		return nil, err
	}

	var syndromes []string
	for _, e := range resp.Omim.EntryList {
		for _, pm := range e.Entry.GeneMap.PhenotypeMapList {
			if p := pm.PhenotypeMap.Phenotype; p != "" {
				syndromes = append(syndromes, p)
			}
		}
	}
	return syndromes, nil
}

func (n *OMIM) writeFragment(env *Env, data map[string][]string) error {
	f := NewFragment(
		"OMIM: Mendelian phenotypes for neural crest genes.",
		"Source: OMIM entry API (geneMap phenotype maps)",
		fmt.Sprintf("Generated by the omim normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		syndromes := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_omim", true)
		f.OpenList("omim_syndromes")
		for _, s := range syndromes {
			f.StringItem(s)
		}
		f.CloseList()
		f.CloseGene()
	}
	path := env.ModelPath("omim.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("omim: wrote %s", path)
	return nil
}
