package normalize

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacuene/lacuene/internal/genes"
)

// HPO fetches human phenotype annotations from the JAX HPO project.
// The annotation set ships as one bulk TSV; the downloaded file doubles
// as the cache.
type HPO struct{}

func (HPO) Name() string      { return "hpo" }
func (HPO) CacheFile() string { return "data/hpo/genes_to_phenotype.txt" }

const hpoAnnotationsURL = "http://purl.obolibrary.org/obo/hp/hpoa/genes_to_phenotype.txt"

// hpoMaxPhenotypes caps the phenotype list per gene; some genes carry
// hundreds of annotations.
const hpoMaxPhenotypes = 20

func (n *HPO) Run(ctx context.Context, env *Env) error {
	path := env.DataPath("hpo", "genes_to_phenotype.txt")

	raw, err := os.ReadFile(path)
	if err == nil {
		env.Printf("hpo: using cached annotation file %s", path)
	} else {
		env.Printf("hpo: downloading gene-to-phenotype annotations...")
		resp, gerr := env.Client.Get(ctx, hpoAnnotationsURL, nil, nil)
		if gerr != nil {
			return fmt.Errorf("hpo: download annotations: %w", gerr)
		}
		raw = resp.Body
		if merr := os.MkdirAll(filepath.Dir(path), 0o750); merr != nil {
			return merr
		}
		if werr := os.WriteFile(path, raw, 0o600); werr != nil {
			return werr
		}
		env.Printf("hpo: saved %d bytes to %s", len(raw), path)
	}

	data, err := n.parse(raw)
	if err != nil {
		return err
	}

	report := NewReport("hpo")
	for _, symbol := range genes.Symbols() {
		if phenotypes, ok := data[symbol]; ok {
			env.Printf("  %s: %d phenotypes", symbol, len(phenotypes))
			report.OK(symbol, "")
		} else {
			env.Printf("  %s: no annotations", symbol)
			report.Failed(symbol, "no annotations in release file")
		}
	}

	if len(data) == 0 {
		return fmt.Errorf("hpo: no annotations matched any tracked gene")
	}

	if err := n.writeFragment(env, data); err != nil {
		return err
	}
	env.Printf("%s", report.Summary())
	return nil
}

// parse reads the tab-separated annotation release and collects
// phenotype names per tracked gene symbol. Columns:
// ncbi_gene_id, gene_symbol, hpo_id, hpo_name, frequency, disease_id.
func (n *HPO) parse(raw []byte) (map[string][]string, error) {
	tracked := make(map[string]bool, len(genes.Registry))
	for symbol := range genes.Registry {
		tracked[symbol] = true
	}

	data := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "ncbi_gene_id") || strings.HasPrefix(line, "#") {
				continue
			}
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			continue
		}
		symbol, name := fields[1], fields[3]
		if !tracked[symbol] || name == "" {
			continue
		}
		if seen[symbol] == nil {
			seen[symbol] = make(map[string]bool)
		}
		if seen[symbol][name] || len(data[symbol]) >= hpoMaxPhenotypes {
			continue
		}
		seen[symbol][name] = true
		data[symbol] = append(data[symbol], name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("hpo: scan annotations: %w", err)
	}
	return data, nil
}

func (n *HPO) writeFragment(env *Env, data map[string][]string) error {
	f := NewFragment(
		"HPO: human phenotype annotations for neural crest genes.",
		"Source: JAX HPO genes_to_phenotype release",
		fmt.Sprintf("Generated by the hpo normalizer -- %d genes", len(data)),
	)
	for _, symbol := range sortedKeys(data) {
		phenotypes := data[symbol]
		f.OpenGene(symbol)
		f.Bool("_in_hpo", true)
		f.OpenList("phenotypes")
		for _, p := range phenotypes {
			f.StringItem(p)
		}
		f.CloseList()
		f.CloseGene()
	}
	path := env.ModelPath("hpo.cue")
	if err := f.WriteFile(path); err != nil {
		return err
	}
	env.Printf("hpo: wrote %s", path)
	return nil
}
