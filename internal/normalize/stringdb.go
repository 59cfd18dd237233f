package normalize

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// StringDB fetches protein-protein interaction partners from the STRING
// API, keeping partners above a configurable combined-score threshold.
type StringDB struct{}

func (StringDB) Name() string      { return "string" }
func (StringDB) CacheFile() string { return "data/string/string_cache.json" }

const (
	stringPartnersURL  = "https://string-db.org/api/json/interaction_partners"
	stringHumanSpecies = "9606"
	stringPartnerLimit = 20
)

type stringPartner struct {
	Symbol string `json:"symbol"`
	Score  int    `json:"score"`
}

type stringRecord struct {
	Partners []stringPartner `json:"partners"`
}

type stringAPIPartner struct {
	PreferredNameB string  `json:"preferredName_B"`
	Score          float64 `json:"score"`
}

func (n *StringDB) Run(ctx context.Context, env *Env) error {
	env.Printf("string: querying STRING for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[stringRecord](env.DataPath("string", "string_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("string")
	data := make(map[string]stringRecord)

	for _, symbol := range genes.Symbols() {
		if rec, ok := store.Get(symbol); ok {
			env.Printf("  %s: cached (%d partners)", symbol, len(rec.Partners))
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

		env.Printf("  %s: %d partners", symbol, len(rec.Partners))
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no STRING data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func (n *StringDB) queryGene(ctx context.Context, env *Env, symbol string) (*stringRecord, error) {
	minScore := env.Cfg.Sources.StringMinScore

	params := url.Values{}
	params.Set("identifiers", symbol)
	params.Set("species", stringHumanSpecies)
	params.Set("required_score", fmt.Sprintf("%d", minScore))
	params.Set("limit", fmt.Sprintf("%d", stringPartnerLimit))
	params.Set("caller_identity", "lacuene")

	var partners []stringAPIPartner
	if err := env.Client.GetJSON(ctx, stringPartnersURL, params, jsonAccept(), &partners); err != nil {
		return nil, err
	}

	rec := &stringRecord{Partners: []stringPartner{}}
	for _, p := range partners {
		if p.PreferredNameB == "" {
			continue
		}
		// STRING reports combined scores as 0-1 floats; the model keeps
		// the conventional 0-1000 integer form.
		score := int(math.Round(p.Score * 1000))
		if score < minScore {
			continue
		}
		rec.Partners = append(rec.Partners, stringPartner{
			Symbol: p.PreferredNameB,
			Score:  score,
		})
	}
	return rec, nil
}

func (n *StringDB) writeFragment(env *Env, data map[string]stringRecord) error {
	f := NewFragment(
		"STRING: protein-protein interaction partners for neural crest genes.",
		"Source: STRING API interaction_partners endpoint (human, high confidence)",
		fmt.Sprintf("Generated by the string normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_string", true)
		if len(rec.Partners) > 0 {
			f.OpenList("string_partners")
			for _, p := range rec.Partners {
				f.OpenStructItem()
				f.String("symbol", p.Symbol)
				f.Int("score", p.Score)
				f.CloseStructItem()
			}
			f.CloseList()
		}
		f.CloseGene()
	}
	path := env.ModelPath("string.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("string: wrote %s", path)
	return nil
}
