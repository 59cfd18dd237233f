package normalize

import (
	"context"
	"fmt"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// NIHReporter fetches active research funding per gene from the NIH
// RePORTER project search API.
type NIHReporter struct{}

func (NIHReporter) Name() string      { return "nih_reporter" }
func (NIHReporter) CacheFile() string { return "data/nih_reporter/nih_reporter_cache.json" }

const nihReporterSearchURL = "https://api.reporter.nih.gov/v2/projects/search"

type nihProject struct {
	Title       string  `json:"title"`
	FiscalYear  int     `json:"fiscal_year"`
	AwardAmount float64 `json:"award_amount"`
}

type nihRecord struct {
	ActiveGrants int          `json:"active_grants"`
	Projects     []nihProject `json:"projects"`
}

type nihSearchResponse struct {
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
	Results []struct {
		ProjectTitle string  `json:"project_title"`
		FiscalYear   int     `json:"fiscal_year"`
		AwardAmount  float64 `json:"award_amount"`
	} `json:"results"`
}

func (n *NIHReporter) Run(ctx context.Context, env *Env) error {
	env.Printf("nih_reporter: searching NIH RePORTER for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[nihRecord](env.DataPath("nih_reporter", "nih_reporter_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("nih_reporter")
	data := make(map[string]nihRecord)

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

		env.Printf("  %s: %d active grants", symbol, rec.ActiveGrants)
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no NIH RePORTER data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *NIHReporter) queryGene(ctx context.Context, env *Env, symbol string) (*nihRecord, error) {
	body := map[string]any{
		"criteria": map[string]any{
			"advanced_text_search": map[string]any{
				"operator":     "and",
				"search_field": "projecttitle,abstracttext,terms",
				"search_text":  fmt.Sprintf("%s neural crest", symbol),
			},
			"include_active_projects": true,
		},
		"limit":               5,
		"sort_field":          "fiscal_year",
		"sort_order":          "desc",
		"offset":              0,
		"exclude_subprojects": true,
	}

	var resp nihSearchResponse
	if err := env.Client.PostJSON(ctx, nihReporterSearchURL, body, jsonAccept(), &resp); err != nil {
		return nil, err
	}

	rec := &nihRecord{ActiveGrants: resp.Meta.Total}
	for _, r := range resp.Results {
		rec.Projects = append(rec.Projects, nihProject{
			Title:       r.ProjectTitle,
			FiscalYear:  r.FiscalYear,
			AwardAmount: r.AwardAmount,
		})
	}
	return rec, nil
}

func (n *NIHReporter) writeFragment(env *Env, data map[string]nihRecord) error {
	f := NewFragment(
		"NIH RePORTER: active research funding for neural crest genes.",
		"Source: NIH RePORTER v2 project search API",
		fmt.Sprintf("Generated by the nih_reporter normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_nih_reporter", true)
		f.Int("active_grant_count", rec.ActiveGrants)
		if len(rec.Projects) > 0 {
			f.OpenList("nih_reporter_projects")
			for _, p := range rec.Projects {
				f.OpenStructItem()
				f.String("title", truncate(p.Title, 200))
				f.Int("fiscal_year", p.FiscalYear)
				f.CloseStructItem()
			}
			f.CloseList()
		}
		f.CloseGene()
	}
	path := env.ModelPath("nih_reporter.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("nih_reporter: wrote %s", path)
	return nil
}
