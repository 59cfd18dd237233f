package normalize

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lacuene/lacuene/internal/genes"
)

// GO fetches Gene Ontology annotations from the EBI QuickGO annotation
// search, keyed by UniProt accession. No cache file; the normalizer
// always runs.
type GO struct{}

func (GO) Name() string      { return "go" }
func (GO) CacheFile() string { return "" }

const quickGOAnnotationURL = "https://www.ebi.ac.uk/QuickGO/services/annotation/search"

// QuickGO reports full aspect names; the model wants the one-letter
// GAF codes.
var goAspectCodes = map[string]string{
	"biological_process": "P",
	"molecular_function": "F",
	"cellular_component": "C",
}

type goTerm struct {
	GOID     string `json:"go_id"`
	TermName string `json:"term_name"`
	Aspect   string `json:"aspect"`
}

type quickGOResponse struct {
	Results []struct {
		GOID     string `json:"goId"`
		GOName   string `json:"goName"`
		GOAspect string `json:"goAspect"`
	} `json:"results"`
}

func (n *GO) Run(ctx context.Context, env *Env) error {
	env.Printf("go: querying QuickGO annotations for %d neural crest genes...", len(genes.Registry))

	report := NewReport("go")
	data := make(map[string][]goTerm)

	for _, symbol := range genes.Symbols() {
		accession := genes.Registry[symbol].UniProt

		terms, err := n.queryAccession(ctx, env, accession)
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

		env.Printf("  %s: %d GO terms", symbol, len(terms))
		data[symbol] = terms
		report.OK(symbol, "")
	}

	if len(data) == 0 {
		return fmt.Errorf("no QuickGO annotations retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *GO) queryAccession(ctx context.Context, env *Env, accession string) ([]goTerm, error) {
	params := url.Values{
		"geneProductId": {accession},
		"limit":         {"50"},
	}

	var resp quickGOResponse
	if err := env.Client.GetJSON(ctx, quickGOAnnotationURL, params, jsonAccept(), &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var terms []goTerm
	for _, r := range resp.Results {
		if r.GOID == "" || seen[r.GOID] {
			continue
		}
		seen[r.GOID] = true
		aspect := goAspectCodes[r.GOAspect]
		if aspect == "" {
			continue
		}
		terms = append(terms, goTerm{GOID: r.GOID, TermName: r.GOName, Aspect: aspect})
	}
	return terms, nil
}

func (n *GO) writeFragment(env *Env, data map[string][]goTerm) error {
	f := NewFragment(
		"Gene Ontology: annotations for neural crest genes.",
		"Source: EBI QuickGO annotation search",
		fmt.Sprintf("Generated by the go normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		terms := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_go", true)
		f.OpenList("go_terms")
		for _, t := range terms {
			f.OpenStructItem()
			f.String("go_id", t.GOID)
			f.String("term_name", t.TermName)
			f.String("aspect", t.Aspect)
			f.CloseStructItem()
		}
		f.CloseList()
		f.CloseGene()
	}
	path := env.ModelPath("go.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("go: wrote %s", path)
	return nil
}
