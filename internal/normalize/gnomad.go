package normalize

import (
	"context"
	"fmt"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// Gnomad fetches gene constraint metrics (pLI, LOEUF) from the gnomAD
// GraphQL API.
type Gnomad struct{}

func (Gnomad) Name() string      { return "gnomad" }
func (Gnomad) CacheFile() string { return "data/gnomad/gnomad_cache.json" }

const gnomadGraphQLURL = "https://gnomad.broadinstitute.org/api"

const gnomadConstraintQuery = `
query GeneConstraint($symbol: String!) {
  gene(gene_symbol: $symbol, reference_genome: GRCh38) {
    gnomad_constraint {
      pli
      oe_lof_upper
    }
  }
}`

type gnomadRecord struct {
	PLI   *float64 `json:"pli"`
	LOEUF *float64 `json:"loeuf"`
}

type gnomadResponse struct {
	Data struct {
		Gene *struct {
			GnomadConstraint *struct {
				PLI        *float64 `json:"pli"`
				OELofUpper *float64 `json:"oe_lof_upper"`
			} `json:"gnomad_constraint"`
		} `json:"gene"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (n *Gnomad) Run(ctx context.Context, env *Env) error {
	env.Printf("gnomad: querying gnomAD constraint for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[gnomadRecord](env.DataPath("gnomad", "gnomad_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("gnomad")
	data := make(map[string]gnomadRecord)

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

		env.Printf("  %s: pli=%s loeuf=%s", symbol, fmtScore(rec.PLI), fmtScore(rec.LOEUF))
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no gnomAD data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *Gnomad) queryGene(ctx context.Context, env *Env, symbol string) (*gnomadRecord, error) {
	body := map[string]any{
		"query":     gnomadConstraintQuery,
		"variables": map[string]string{"symbol": symbol},
	}

	var resp gnomadResponse
	if err := env.Client.PostJSON(ctx, gnomadGraphQLURL, body, jsonAccept(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", resp.Errors[0].Message)
	}
	if resp.Data.Gene == nil || resp.Data.Gene.GnomadConstraint == nil {
		return nil, fmt.Errorf("no constraint data for %s", symbol)
	}

	c := resp.Data.Gene.GnomadConstraint
	return &gnomadRecord{PLI: c.PLI, LOEUF: c.OELofUpper}, nil
}

func fmtScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}

func (n *Gnomad) writeFragment(env *Env, data map[string]gnomadRecord) error {
	f := NewFragment(
		"gnomAD: gene constraint metrics for neural crest genes.",
		"Source: gnomAD GraphQL API (GRCh38)",
		fmt.Sprintf("Generated by the gnomad normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_gnomad", true)
		if rec.PLI != nil {
			f.Float("pli_score", *rec.PLI)
		}
		if rec.LOEUF != nil {
			f.Float("loeuf_score", *rec.LOEUF)
		}
		f.CloseGene()
	}
	path := env.ModelPath("gnomad.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("gnomad: wrote %s", path)
	return nil
}
