package normalize

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// ClinVar queries NCBI ClinVar via E-utilities (esearch + esummary) for
// pathogenic/likely-pathogenic variant counts and top variant details.
type ClinVar struct{}

func (ClinVar) Name() string      { return "clinvar" }
func (ClinVar) CacheFile() string { return "data/clinvar/clinvar_cache.json" }

const clinvarPathogenicTerm = "[gene] AND (clinsig_pathogenic[prop] OR clinsig_likely_pathogenic[prop])"

type clinvarVariant struct {
	Name                 string `json:"name"`
	ClinicalSignificance string `json:"clinical_significance"`
	Condition            string `json:"condition"`
}

type clinvarRecord struct {
	PathogenicCount int              `json:"pathogenic_count"`
	Variants        []clinvarVariant `json:"variants,omitempty"`
}

type clinvarSummary struct {
	Title                string `json:"title"`
	ClinicalSignificance struct {
		Description string `json:"description"`
	} `json:"clinical_significance"`
	TraitSet []struct {
		TraitName string `json:"trait_name"`
	} `json:"trait_set"`
}

func (n *ClinVar) Run(ctx context.Context, env *Env) error {
	env.Printf("clinvar: querying ClinVar for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[clinvarRecord](env.DataPath("clinvar", "clinvar_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("clinvar")
	data := make(map[string]clinvarRecord)

	for _, symbol := range genes.Symbols() {
		if rec, ok := store.Get(symbol); ok {
			env.Printf("  %s: cached (%d pathogenic)", symbol, rec.PathogenicCount)
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

		env.Printf("  %s: %d pathogenic, %d top variants", symbol, rec.PathogenicCount, len(rec.Variants))
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no ClinVar data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

// queryGene runs the three-step ClinVar lookup: pathogenic count, top
// variant IDs, then variant summaries. Partial results keep the count.
func (n *ClinVar) queryGene(ctx context.Context, env *Env, symbol string) (*clinvarRecord, error) {
	term := symbol + clinvarPathogenicTerm

	counted, err := env.esearch(ctx, "clinvar", term, url.Values{"retmax": {"0"}})
	if err != nil {
		return nil, fmt.Errorf("pathogenic count: %w", err)
	}
	rec := &clinvarRecord{PathogenicCount: counted.count()}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	found, err := env.esearch(ctx, "clinvar", term, url.Values{
		"retmax": {"5"},
		"sort":   {"clinical_significance"},
	})
	if err != nil || len(found.ESearchResult.IDList) == 0 {
		return rec, nil
	}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	summaries, err := env.esummary(ctx, "clinvar", found.ESearchResult.IDList)
	if err != nil {
		return rec, nil
	}

	for _, uid := range summaries.uids() {
		var s clinvarSummary
		if !summaries.entry(uid, &s) || s.Title == "" {
			continue
		}
		condition := "not specified"
		if len(s.TraitSet) > 0 {
			condition = ""
			for _, trait := range s.TraitSet {
				if trait.TraitName == "" {
					continue
				}
				if condition != "" {
					condition += "; "
				}
				condition += trait.TraitName
			}
			if condition == "" {
				condition = "not specified"
			}
		}
		rec.Variants = append(rec.Variants, clinvarVariant{
			Name:                 s.Title,
			ClinicalSignificance: s.ClinicalSignificance.Description,
			Condition:            condition,
		})
		if len(rec.Variants) == 5 {
			break
		}
	}
	return rec, nil
}

func (n *ClinVar) writeFragment(env *Env, data map[string]clinvarRecord) error {
	f := NewFragment(
		"ClinVar: pathogenic variant data for neural crest genes.",
		"Source: NCBI ClinVar via E-utilities (esearch + esummary)",
		fmt.Sprintf("Generated by the clinvar normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_clinvar", true)
		f.String("clinvar_gene_id", genes.Registry[symbol].NCBI)
		f.Int("pathogenic_count", rec.PathogenicCount)
		if len(rec.Variants) > 0 {
			f.OpenList("clinvar_variants")
			for _, v := range rec.Variants {
				f.OpenStructItem()
				f.String("name", v.Name)
				f.String("clinical_significance", v.ClinicalSignificance)
				f.String("condition", v.Condition)
				f.CloseStructItem()
			}
			f.CloseList()
		}
		f.CloseGene()
	}
	path := env.ModelPath("clinvar.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("clinvar: wrote %s", path)
	return nil
}
