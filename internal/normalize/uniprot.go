package normalize

import (
	"context"
	"fmt"

	"github.com/lacuene/lacuene/internal/genes"
)

// UniProt fetches protein metadata from UniProtKB REST by canonical
// accession: recommended protein name, sequence length, and a function
// snippet. No cache file; the normalizer always runs.
type UniProt struct{}

func (UniProt) Name() string      { return "uniprot" }
func (UniProt) CacheFile() string { return "" }

const uniprotEntryURL = "https://rest.uniprot.org/uniprotkb/"

type uniprotEntry struct {
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Sequence struct {
		Length int `json:"length"`
	} `json:"sequence"`
	Comments []struct {
		CommentType string `json:"commentType"`
		Texts       []struct {
			Value string `json:"value"`
		} `json:"texts"`
	} `json:"comments"`
}

type uniprotRecord struct {
	Accession   string `json:"accession"`
	ProteinName string `json:"protein_name"`
	Length      int    `json:"length"`
	Function    string `json:"function,omitempty"`
}

func (n *UniProt) Run(ctx context.Context, env *Env) error {
	env.Printf("uniprot: querying UniProtKB for %d neural crest genes...", len(genes.Registry))

	report := NewReport("uniprot")
	data := make(map[string]uniprotRecord)

	for _, symbol := range genes.Symbols() {
		accession := genes.Registry[symbol].UniProt

		var entry uniprotEntry
		err := env.Client.GetJSON(ctx, uniprotEntryURL+accession+".json", nil, jsonAccept(), &entry)
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

		rec := uniprotRecord{
			Accession:   accession,
			ProteinName: entry.ProteinDescription.RecommendedName.FullName.Value,
			Length:      entry.Sequence.Length,
		}
		for _, c := range entry.Comments {
			if c.CommentType == "FUNCTION" && len(c.Texts) > 0 {
				rec.Function = truncate(c.Texts[0].Value, 300)
				break
			}
		}

		env.Printf("  %s: %s (%d aa)", symbol, rec.ProteinName, rec.Length)
		data[symbol] = rec
		report.OK(symbol, "")
	}

	if len(data) == 0 {
		return fmt.Errorf("no UniProt data retrieved for any gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (n *UniProt) writeFragment(env *Env, data map[string]uniprotRecord) error {
	f := NewFragment(
		"UniProt: protein metadata for neural crest genes.",
		"Source: UniProtKB REST entry endpoint",
		fmt.Sprintf("Generated by the uniprot normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		rec := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_uniprot", true)
		f.String("uniprot_id", rec.Accession)
		f.String("protein_name", rec.ProteinName)
		f.Int("protein_length", rec.Length)
		if rec.Function != "" {
			f.String("protein_function", rec.Function)
		}
		f.CloseGene()
	}
	path := env.ModelPath("uniprot.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("uniprot: wrote %s", path)
	return nil
}
