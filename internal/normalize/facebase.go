package normalize

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// FaceBase counts craniofacial datasets mentioning each gene in the
// FaceBase data repository (ERMrest catalog API).
type FaceBase struct{}

func (FaceBase) Name() string      { return "facebase" }
func (FaceBase) CacheFile() string { return "data/facebase/facebase_cache.json" }

const facebaseCatalogURL = "https://www.facebase.org/ermrest/catalog/1/aggregate/isa:dataset"

type facebaseRecord struct {
	DatasetCount int `json:"dataset_count"`
}

type facebaseCountRow struct {
	Count int `json:"cnt"`
}

func (n *FaceBase) Run(ctx context.Context, env *Env) error {
	env.Printf("facebase: counting datasets for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[facebaseRecord](env.DataPath("facebase", "facebase_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("facebase")
	data := make(map[string]facebaseRecord)

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

		env.Printf("  %s: %d datasets", symbol, rec.DatasetCount)
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no FaceBase data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *FaceBase) queryGene(ctx context.Context, env *Env, symbol string) (*facebaseRecord, error) {
	// ERMrest aggregate: count datasets whose title matches the symbol
	// as a word (ciregexp is case insensitive).
	pattern := url.QueryEscape(`\b` + symbol + `\b`)
	rawURL := fmt.Sprintf("%s/title::ciregexp::%s/cnt:=cnt(id)", facebaseCatalogURL, pattern)

	var rows []facebaseCountRow
	if err := env.Client.GetJSON(ctx, rawURL, nil, jsonAccept(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty aggregate response for %s", symbol)
	}
	return &facebaseRecord{DatasetCount: rows[0].Count}, nil
}

func (n *FaceBase) writeFragment(env *Env, data map[string]facebaseRecord) error {
	f := NewFragment(
		"FaceBase: craniofacial dataset counts for neural crest genes.",
		"Source: FaceBase ERMrest catalog aggregate API",
		fmt.Sprintf("Generated by the facebase normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_facebase", rec.DatasetCount > 0)
		f.Int("facebase_dataset_count", rec.DatasetCount)
		f.CloseGene()
	}
	path := env.ModelPath("facebase.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("facebase: wrote %s", path)
	return nil
}
