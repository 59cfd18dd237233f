package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/lacuene/lacuene/internal/cache"
	"github.com/lacuene/lacuene/internal/genes"
)

// GTEx maps HGNC symbols to Ensembl gene IDs via MyGene.info, then queries
// the GTEx Portal API v2 for median gene expression across tissues.
type GTEx struct{}

func (GTEx) Name() string      { return "gtex" }
func (GTEx) CacheFile() string { return "data/gtex/gtex_cache.json" }

const (
	mygeneQueryURL     = "https://mygene.info/v3/query"
	gtexExpressionURL  = "https://gtexportal.org/api/v2/expression/medianGeneExpression"
	gtexDatasetID      = "gtex_v8"
	gtexTopTissueCount = 5
)

// craniofacialTissues are averaged into craniofacial_expression, using
// whichever are present in the data.
var craniofacialTissues = map[string]bool{
	"Minor Salivary Gland":           true,
	"Nerve - Tibial":                 true,
	"Skin - Sun Exposed (Lower leg)": true,
	"Brain - Cerebellum":             true,
	"Brain - Cortex":                 true,
}

type gtexTissue struct {
	Tissue    string  `json:"tissue"`
	MedianTPM float64 `json:"median_tpm"`
}

type gtexRecord struct {
	EnsemblID              string       `json:"ensembl_id"`
	TopTissues             []gtexTissue `json:"top_tissues"`
	CraniofacialExpression float64      `json:"craniofacial_expression"`
}

type mygeneResponse struct {
	Hits []struct {
		Ensembl json.RawMessage `json:"ensembl"`
	} `json:"hits"`
}

type mygeneEnsembl struct {
	Gene string `json:"gene"`
}

type gtexExpressionResponse struct {
	Data []struct {
		TissueSiteDetailID string   `json:"tissueSiteDetailId"`
		TissueSiteDetail   string   `json:"tissueSiteDetail"`
		Median             *float64 `json:"median"`
	} `json:"data"`
}

func (n *GTEx) Run(ctx context.Context, env *Env) error {
	env.Printf("gtex: querying GTEx for %d neural crest genes...", len(genes.Registry))

	store, err := cache.Open[gtexRecord](env.DataPath("gtex", "gtex_cache.json"))
	if err != nil {
		return err
	}

	report := NewReport("gtex")
	data := make(map[string]gtexRecord)

	for _, symbol := range genes.Symbols() {
		if rec, ok := store.Get(symbol); ok {
			env.Printf("  %s: cached (ensembl=%s, %d tissues)", symbol, rec.EnsemblID, len(rec.TopTissues))
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

		env.Printf("  %s: ensembl=%s, %d tissues, cranio=%.2f",
			symbol, rec.EnsemblID, len(rec.TopTissues), rec.CraniofacialExpression)
		data[symbol] = *rec
		store.Put(symbol, *rec)
		report.OK(symbol, "")
	}

	if err := store.Save(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no GTEx data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

// queryGene resolves the Ensembl ID and fetches expression. When the
// expression lookup fails the partial record keeps just the Ensembl ID.
func (n *GTEx) queryGene(ctx context.Context, env *Env, symbol string) (*gtexRecord, error) {
	ensemblID, err := n.resolveEnsemblID(ctx, env, symbol)
	if err != nil {
		return nil, fmt.Errorf("resolve Ensembl ID: %w", err)
	}
	if err := env.Delay(ctx); err != nil {
		return nil, err
	}

	tissues := n.queryExpression(ctx, env, ensemblID)
	if len(tissues) == 0 {
		return &gtexRecord{EnsemblID: ensemblID, TopTissues: []gtexTissue{}}, nil
	}

	return &gtexRecord{
		EnsemblID:              ensemblID,
		TopTissues:             topTissues(tissues, gtexTopTissueCount),
		CraniofacialExpression: craniofacialExpression(tissues),
	}, nil
}

func (n *GTEx) resolveEnsemblID(ctx context.Context, env *Env, symbol string) (string, error) {
	params := url.Values{}
	params.Set("q", "symbol:"+symbol)
	params.Set("species", "human")
	params.Set("fields", "ensembl.gene")

	var resp mygeneResponse
	if err := env.Client.GetJSON(ctx, mygeneQueryURL, params, jsonAccept(), &resp); err != nil {
		return "", err
	}
	if len(resp.Hits) == 0 {
		return "", fmt.Errorf("no MyGene hits for %s", symbol)
	}

	raw := resp.Hits[0].Ensembl
	// ensembl can be a single object or a list of transcripts.
	var one mygeneEnsembl
	if err := json.Unmarshal(raw, &one); err != nil {
		var many []mygeneEnsembl
		if err := json.Unmarshal(raw, &many); err != nil || len(many) == 0 {
			return "", fmt.Errorf("no Ensembl mapping for %s", symbol)
		}
		one = many[0]
	}
	if !strings.HasPrefix(one.Gene, "ENSG") {
		return "", fmt.Errorf("no Ensembl gene ID for %s", symbol)
	}
	return one.Gene, nil
}

// queryExpression tries the unversioned Ensembl ID first, then falls back
// to a versioned suffix.
func (n *GTEx) queryExpression(ctx context.Context, env *Env, ensemblID string) []gtexTissue {
	tissues := n.fetchExpression(ctx, env, ensemblID)
	if len(tissues) > 0 {
		return tissues
	}
	if err := env.Delay(ctx); err != nil {
		return nil
	}
	return n.fetchExpression(ctx, env, ensemblID+".1")
}

func (n *GTEx) fetchExpression(ctx context.Context, env *Env, gencodeID string) []gtexTissue {
	params := url.Values{}
	params.Set("gencodeId", gencodeID)
	params.Set("datasetId", gtexDatasetID)

	var resp gtexExpressionResponse
	if err := env.Client.GetJSON(ctx, gtexExpressionURL, params, jsonAccept(), &resp); err != nil {
		return nil
	}

	var tissues []gtexTissue
	for _, entry := range resp.Data {
		name := entry.TissueSiteDetail
		if name == "" {
			name = entry.TissueSiteDetailID
		}
		if name == "" || entry.Median == nil {
			continue
		}
		tissues = append(tissues, gtexTissue{
			Tissue:    name,
			MedianTPM: round2(*entry.Median),
		})
	}
	return tissues
}

func topTissues(tissues []gtexTissue, n int) []gtexTissue {
	sorted := append([]gtexTissue(nil), tissues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MedianTPM > sorted[j].MedianTPM
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func craniofacialExpression(tissues []gtexTissue) float64 {
	var sum float64
	var count int
	for _, t := range tissues {
		if craniofacialTissues[t.Tissue] {
			sum += t.MedianTPM
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round2(sum / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (n *GTEx) writeFragment(env *Env, data map[string]gtexRecord) error {
	f := NewFragment(
		"GTEx: tissue expression data for neural crest genes.",
		"Source: GTEx Portal API v2 + MyGene.info (Ensembl ID resolution)",
		fmt.Sprintf("Generated by the gtex normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_gtex", true)
		f.String("gtex_id", rec.EnsemblID)
		f.Float("craniofacial_expression", rec.CraniofacialExpression)
		if len(rec.TopTissues) > 0 {
			f.OpenList("top_tissues")
			for _, t := range rec.TopTissues {
				f.OpenStructItem()
				f.String("tissue", t.Tissue)
				f.Float("median_tpm", t.MedianTPM)
				f.CloseStructItem()
			}
			f.CloseList()
		}
		f.CloseGene()
	}
	path := env.ModelPath("gtex.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("gtex: wrote %s", path)
	return nil
}
