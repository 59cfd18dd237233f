// Package viz derives the Cytoscape.js gene graph from the merged model.
//
// Nodes are genes colored by developmental role and sized by publication
// count; edges connect genes sharing phenotypes, syndromes, or biological
// process terms, plus protein-protein interactions.
package viz

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/lacuene/lacuene/internal/cuemodel"
	"github.com/lacuene/lacuene/internal/genes"
)

// Edge types.
const (
	EdgeSharedPhenotype = "shared_phenotype"
	EdgeSharedSyndrome  = "shared_syndrome"
	EdgeSharedPathway   = "shared_pathway"
	EdgePPI             = "ppi"
)

// fallbackColor is used for roles missing from the palette.
const fallbackColor = "#999999"

// expandedRole is the role key for the loosely-curated secondary tier.
const expandedRole = "expanded"

// Config carries the role taxonomy, palette, and edge windows. Callers
// construct it explicitly so tests can substitute alternate taxonomies.
type Config struct {
	// Roles maps gene symbol to developmental role.
	Roles map[string]string
	// Colors maps role to hex color.
	Colors map[string]string
	// Labels maps role to the legend label.
	Labels map[string]string

	// DefaultRole buckets symbols missing from Roles.
	DefaultRole string

	// Phenotype edges form only when 2..PhenotypeMax genes share a term;
	// universal phenotypes would otherwise explode the edge count.
	PhenotypeMax int
	// Pathway edges form only when 2..PathwayMax genes share a process.
	PathwayMax int
}

// DefaultConfig builds the standard taxonomy from the gene registry.
func DefaultConfig() Config {
	roles := make(map[string]string, len(genes.Registry))
	for symbol := range genes.Registry {
		if role := genes.RoleOf(symbol); role != "" {
			roles[symbol] = role
		}
	}
	return Config{
		Roles: roles,
		Colors: map[string]string{
			"border_spec":   "#58a6ff",
			"nc_specifier":  "#a371f7",
			"emt_migration": "#3fb950",
			"signaling":     "#d29922",
			"craniofacial":  "#f85149",
			"melanocyte":    "#db61a2",
			"enteric":       "#79c0ff",
			"cardiac":       "#f0883e",
			"patterning":    "#f85149",
			expandedRole:    "#484f58",
		},
		Labels: map[string]string{
			"border_spec":   "Border specification",
			"nc_specifier":  "NC specifier",
			"emt_migration": "EMT / migration",
			"signaling":     "Signaling",
			"craniofacial":  "Craniofacial",
			"melanocyte":    "Melanocyte",
			"enteric":       "Enteric NS",
			"cardiac":       "Cardiac NC",
			"patterning":    "Patterning / disease",
			expandedRole:    "Expanded",
		},
		DefaultRole:  "patterning",
		PhenotypeMax: 5,
		PathwayMax:   8,
	}
}

// NodeData is the Cytoscape.js node payload.
type NodeData struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Type        string  `json:"type"`
	RoleLabel   string  `json:"role_label"`
	SourceCount int     `json:"source_count"`
	PubCount    int     `json:"pub_count"`
	PubRecent   int     `json:"pub_recent"`
	Velocity    float64 `json:"velocity"`
	Trend       string  `json:"trend"`
	Color       string  `json:"color"`
	Size        int     `json:"size"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// Node wraps NodeData in the Cytoscape.js element envelope.
type Node struct {
	Data NodeData `json:"data"`
}

// EdgeData is the Cytoscape.js edge payload.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Label  string `json:"label"`
}

// Edge wraps EdgeData in the Cytoscape.js element envelope.
type Edge struct {
	Data EdgeData `json:"data"`
}

// Metadata summarizes the graph for the legend and header.
type Metadata struct {
	Title         string            `json:"title"`
	GeneCount     int               `json:"gene_count"`
	CuratedCount  int               `json:"curated_count"`
	ExpandedCount int               `json:"expanded_count"`
	EdgeCount     int               `json:"edge_count"`
	Sources       []string          `json:"sources"`
	Roles         map[string]string `json:"roles"`
}

// Graph is the full vizdata document.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// ExpandedGene is one entry of the optional secondary-tier gene list.
type ExpandedGene struct {
	Symbol string `json:"symbol"`
}

// Build derives the graph from the model exports plus the optional
// expanded tier.
func Build(cfg Config, sources map[string]cuemodel.SourceFlags, geneData map[string]cuemodel.Gene, expanded []ExpandedGene) Graph {
	nodes := buildNodes(cfg, sources, geneData)
	curated := len(nodes)

	edges := buildPhenotypeEdges(cfg, geneData)
	edges = append(edges, buildSyndromeEdges(geneData)...)
	edges = append(edges, buildPathwayEdges(cfg, geneData)...)
	edges = append(edges, buildPPIEdges(geneData)...)

	expandedNodes := buildExpandedNodes(cfg, sources, expanded)
	nodes = append(nodes, expandedNodes...)

	return Graph{
		Nodes: nodes,
		Edges: edges,
		Metadata: Metadata{
			Title:         "lacuene: Neural Crest Gene Reconciliation",
			GeneCount:     len(nodes),
			CuratedCount:  curated,
			ExpandedCount: len(expandedNodes),
			EdgeCount:     len(edges),
			Sources: []string{
				"Gene Ontology", "OMIM", "HPO", "UniProt", "FaceBase",
				"ClinVar", "PubMed", "gnomAD", "NIH Reporter", "GTEx",
				"ClinicalTrials", "STRING",
			},
			Roles: cfg.Labels,
		},
	}
}

func buildNodes(cfg Config, sources map[string]cuemodel.SourceFlags, geneData map[string]cuemodel.Gene) []Node {
	var nodes []Node
	for _, symbol := range sortedSymbols(sources) {
		flags := sources[symbol]
		role, ok := cfg.Roles[symbol]
		if !ok {
			role = cfg.DefaultRole
		}
		color, ok := cfg.Colors[role]
		if !ok {
			color = fallbackColor
		}
		label, ok := cfg.Labels[role]
		if !ok {
			label = role
		}

		gene := geneData[symbol]
		velocity, trend := pubTrend(gene.PubmedTotal, gene.PubmedRecent)

		nodes = append(nodes, Node{Data: NodeData{
			ID:          symbol,
			Label:       symbol,
			Type:        role,
			RoleLabel:   label,
			SourceCount: flags.Count(),
			PubCount:    gene.PubmedTotal,
			PubRecent:   gene.PubmedRecent,
			Velocity:    velocity,
			Trend:       trend,
			Color:       color,
			Size:        nodeSize(gene.PubmedTotal),
		}})
	}
	return nodes
}

// nodeSize maps publication count to a 10-35px range on a log scale.
func nodeSize(pubCount int) int {
	size := 10 + math.Min(25, math.Log(1+float64(pubCount))*4)
	return int(math.Round(size))
}

// pubTrend classifies a gene's publication trajectory by the recent
// fraction of total output.
func pubTrend(total, recent int) (float64, string) {
	if total <= 0 {
		return 0, "none"
	}
	velocity := math.Round(float64(recent)/float64(total)*100) / 100
	switch {
	case velocity > 0.5:
		return velocity, "rising"
	case velocity > 0.2:
		return velocity, "stable"
	default:
		return velocity, "declining"
	}
}

// edgeKey deduplicates edges by unordered endpoint pair and type; only
// the first shared attribute's label survives per pair per type.
type edgeKey struct {
	a, b, typ string
}

type edgeSet map[edgeKey]bool

func (s edgeSet) add(edges []Edge, a, b, typ, label string) []Edge {
	if a > b {
		a, b = b, a
	}
	key := edgeKey{a, b, typ}
	if s[key] {
		return edges
	}
	s[key] = true
	return append(edges, Edge{Data: EdgeData{Source: a, Target: b, Type: typ, Label: label}})
}

// pairwise emits every unordered pair of the sorted symbol list into the
// edge set with the given type and label.
func pairwise(edges []Edge, seen edgeSet, symbols []string, typ, label string) []Edge {
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			edges = seen.add(edges, symbols[i], symbols[j], typ, label)
		}
	}
	return edges
}

func buildPhenotypeEdges(cfg Config, geneData map[string]cuemodel.Gene) []Edge {
	index := make(map[string][]string)
	for _, symbol := range sortedSymbols(geneData) {
		for _, p := range geneData[symbol].Phenotypes {
			index[p] = append(index[p], symbol)
		}
	}

	var edges []Edge
	seen := make(edgeSet)
	for _, phenotype := range sortedSymbols(index) {
		symbols := dedupe(index[phenotype])
		if len(symbols) >= 2 && len(symbols) <= cfg.PhenotypeMax {
			edges = pairwise(edges, seen, symbols, EdgeSharedPhenotype, phenotype)
		}
	}
	return edges
}

func buildSyndromeEdges(geneData map[string]cuemodel.Gene) []Edge {
	index := make(map[string][]string)
	for _, symbol := range sortedSymbols(geneData) {
		for _, s := range geneData[symbol].OMIMSyndromes {
			// Strip the MIM suffix so "Crouzon syndrome, 123500" matches
			// "Crouzon syndrome, 612247".
			name := s
			if i := strings.Index(s, ","); i >= 0 {
				name = strings.TrimSpace(s[:i])
			}
			index[name] = append(index[name], symbol)
		}
	}

	var edges []Edge
	seen := make(edgeSet)
	for _, syndrome := range sortedSymbols(index) {
		symbols := dedupe(index[syndrome])
		if len(symbols) >= 2 {
			edges = pairwise(edges, seen, symbols, EdgeSharedSyndrome, syndrome)
		}
	}
	return edges
}

func buildPathwayEdges(cfg Config, geneData map[string]cuemodel.Gene) []Edge {
	index := make(map[string][]string)
	for _, symbol := range sortedSymbols(geneData) {
		for _, term := range geneData[symbol].GOTerms {
			if term.Aspect == "P" && term.TermName != "" {
				index[term.TermName] = append(index[term.TermName], symbol)
			}
		}
	}

	var edges []Edge
	seen := make(edgeSet)
	for _, process := range sortedSymbols(index) {
		symbols := dedupe(index[process])
		if len(symbols) >= 2 && len(symbols) <= cfg.PathwayMax {
			edges = pairwise(edges, seen, symbols, EdgeSharedPathway, process)
		}
	}
	return edges
}

func buildPPIEdges(geneData map[string]cuemodel.Gene) []Edge {
	var edges []Edge
	seen := make(edgeSet)
	for _, symbol := range sortedSymbols(geneData) {
		for _, partner := range geneData[symbol].StringPartners {
			if partner.Symbol == "" {
				continue
			}
			if _, ok := geneData[partner.Symbol]; !ok {
				continue
			}
			a, b := symbol, partner.Symbol
			if a > b {
				a, b = b, a
			}
			label := fmt.Sprintf("%s-%s", a, b)
			if partner.Score > 0 {
				label = fmt.Sprintf("%s (%d)", label, partner.Score)
			}
			edges = seen.add(edges, a, b, EdgePPI, label)
		}
	}
	return edges
}

// buildExpandedNodes adds the secondary-tier genes as unconnected,
// low-opacity nodes, excluding curated symbols and the ZNF family.
func buildExpandedNodes(cfg Config, sources map[string]cuemodel.SourceFlags, expanded []ExpandedGene) []Node {
	color, ok := cfg.Colors[expandedRole]
	if !ok {
		color = fallbackColor
	}
	label, ok := cfg.Labels[expandedRole]
	if !ok {
		label = expandedRole
	}

	var nodes []Node
	seen := make(map[string]bool)
	for _, gene := range expanded {
		symbol := gene.Symbol
		if symbol == "" || seen[symbol] {
			continue
		}
		if _, curated := sources[symbol]; curated {
			continue
		}
		if strings.HasPrefix(symbol, "ZNF") {
			continue
		}
		seen[symbol] = true
		nodes = append(nodes, Node{Data: NodeData{
			ID:        symbol,
			Label:     symbol,
			Type:      expandedRole,
			RoleLabel: label,
			Trend:     "none",
			Color:     color,
			Size:      8,
			Opacity:   0.5,
		}})
	}
	return nodes
}

// LoadExpanded reads the optional expanded-tier gene list. A missing
// file is a legitimate empty tier, not an error.
func LoadExpanded(path string) ([]ExpandedGene, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read expanded gene list: %w", err)
	}
	var out []ExpandedGene
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse expanded gene list %s: %w", path, err)
	}
	return out, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	var out []string
	for _, s := range symbols {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func sortedSymbols[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
