package normalize

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// PubMed counts publications per gene via E-utilities: total, a recent
// five-year window for the velocity metric, and top paper titles.
type PubMed struct{}

func (PubMed) Name() string      { return "pubmed" }
func (PubMed) CacheFile() string { return "data/pubmed/pubmed_cache.json" }

// pubmedRecentYears is the window treated as "recent" for the
// publication-velocity trend downstream.
const pubmedRecentYears = 5

type pubmedRecord struct {
	Total  int      `json:"total"`
	Recent int      `json:"recent"`
	Papers []string `json:"papers,omitempty"`
}

type pubmedSummary struct {
	Title string `json:"title"`
}

func (n *PubMed) Run(ctx context.Context, env *Env) error {
	env.Printf("pubmed: querying PubMed for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[pubmedRecord](env.DataPath("pubmed", "pubmed_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("pubmed")
	data := make(map[string]pubmedRecord)

	for _, symbol := range genes.Symbols() {
		if rec, ok := store.Get(symbol); ok {
			env.Printf("  %s: cached (%d total, %d recent)", symbol, rec.Total, rec.Recent)
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

		env.Printf("  %s: %d total, %d recent, %d titles", symbol, rec.Total, rec.Recent, len(rec.Papers))
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no PubMed data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func pubmedTerm(symbol string) string {
	return fmt.Sprintf("%s[Title/Abstract] AND (neural crest OR craniofacial)", symbol)
}

func (n *PubMed) queryGene(ctx context.Context, env *Env, symbol string) (*pubmedRecord, error) {
	term := pubmedTerm(symbol)

	total, err := env.esearch(ctx, "pubmed", term, url.Values{"retmax": {"0"}})
	if err != nil {
		return nil, fmt.Errorf("total count: %w", err)
	}
	rec := &pubmedRecord{Total: total.count()}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	year := time.Now().Year()
	recent, err := env.esearch(ctx, "pubmed", term, url.Values{
		"retmax":   {"0"},
		"datetype": {"pdat"},
		"mindate":  {fmt.Sprintf("%d", year-pubmedRecentYears)},
		"maxdate":  {fmt.Sprintf("%d", year)},
	})
	if err == nil {
		rec.Recent = recent.count()
	}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	// Top titles, best effort.
	found, err := env.esearch(ctx, "pubmed", term, url.Values{
		"retmax": {"3"},
		"sort":   {"relevance"},
	})
	if err != nil || len(found.ESearchResult.IDList) == 0 {
		return rec, nil
	}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	summaries, err := env.esummary(ctx, "pubmed", found.ESearchResult.IDList)
	if err != nil {
		return rec, nil
	}
	for _, uid := range summaries.uids() {
		var s pubmedSummary
		if summaries.entry(uid, &s) && s.Title != "" {
			rec.Papers = append(rec.Papers, s.Title)
		}
	}
	return rec, nil
}

func (n *PubMed) writeFragment(env *Env, data map[string]pubmedRecord) error {
	f := NewFragment(
		"PubMed: publication counts for neural crest genes.",
		"Source: NCBI E-utilities (esearch + esummary), neural crest / craniofacial context",
		fmt.Sprintf("Generated by the pubmed normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_pubmed", true)
		f.Int("pubmed_total", rec.Total)
		f.Int("pubmed_recent", rec.Recent)
		if len(rec.Papers) > 0 {
			f.OpenList("pubmed_papers")
			for _, title := range rec.Papers {
				f.StringItem(title)
			}
			f.CloseList()
		}
		f.CloseGene()
	}
	path := env.ModelPath("pubmed.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("pubmed: wrote %s", path)
	return nil
}
