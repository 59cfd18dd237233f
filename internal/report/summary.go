package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lacuene/lacuene/internal/cuemodel"
)

// columnHeads are the abbreviated per-source column headers of the
// summary flag table, aligned with sourceOrder.
var columnHeads = []string{
	"GO", "OMIM", "HPO", "UniP", "FB", "CV", "PM", "gn",
	"NR", "GT", "CT", "ST", "OR", "OT", "MO", "St",
}

// SummaryInput is everything the text summary renders from.
type SummaryInput struct {
	GapReport cuemodel.GapReport
	Sources   map[string]cuemodel.SourceFlags
}

// Summary renders the plain-text coverage report.
func Summary(in SummaryInput) string {
	var b strings.Builder
	total := in.GapReport.Total()

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("  lacuene: Neural Crest Gene Reconciliation\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "\n%d genes unified across %d sources\n\n", total, len(sourceOrder))

	writeTiers(&b, in.Sources)
	writeCoverage(&b, in.Sources, total)
	writeGaps(&b, in.GapReport.ResearchGaps)
	writeFlagTable(&b, in.Sources)

	b.WriteString("\n")
	return b.String()
}

// writeTiers prints how many genes sit at each source-coverage level.
func writeTiers(b *strings.Builder, sources map[string]cuemodel.SourceFlags) {
	tiers := make(map[int]int)
	for _, flags := range sources {
		tiers[flags.Count()]++
	}

	levels := make([]int, 0, len(tiers))
	for tier := range tiers {
		levels = append(levels, tier)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	b.WriteString("Coverage Tiers:\n")
	for _, tier := range levels {
		count := tiers[tier]
		label := "genes"
		if count == 1 {
			label = "gene"
		}
		fmt.Fprintf(b, "  %2d sources:  %2d %s\n", tier, count, label)
	}
}

func writeCoverage(b *strings.Builder, sources map[string]cuemodel.SourceFlags, total int) {
	counts := sourceCounts(sources)

	b.WriteString("\nSource Coverage:\n")
	for _, key := range sourceOrder {
		count := counts[key]
		pct := 0
		if total > 0 {
			pct = count * 100 / total
		}
		fmt.Fprintf(b, "  %-15s  %2d/%d (%d%%)\n", sourceLabels[key], count, total, pct)
	}
}

func writeGaps(b *strings.Builder, gaps []cuemodel.ResearchGap) {
	if len(gaps) == 0 {
		return
	}
	fmt.Fprintf(b, "\nResearch Gaps (OMIM disease but no FaceBase data): %d\n", len(gaps))
	for _, g := range gaps {
		desc := "no syndromes listed"
		if len(g.Syndromes) > 0 {
			head := g.Syndromes
			if len(head) > 3 {
				head = head[:3]
			}
			desc = strings.Join(head, ", ")
		}
		fmt.Fprintf(b, "  %-8s  %s\n", g.Symbol, desc)
	}
}

// writeFlagTable prints the per-gene Y/- matrix across every source flag.
func writeFlagTable(b *strings.Builder, sources map[string]cuemodel.SourceFlags) {
	heads := make([]string, len(columnHeads))
	for i, h := range columnHeads {
		heads[i] = fmt.Sprintf("%4s", h)
	}
	fmt.Fprintf(b, "\n%-10s %s  Sources\n", "Symbol", strings.Join(heads, "  "))
	b.WriteString(strings.Repeat("-", 70) + "\n")

	symbols := make([]string, 0, len(sources))
	for s := range sources {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		flags := sources[symbol]
		marks := make([]string, len(sourceOrder))
		for i, key := range sourceOrder {
			mark := "-"
			if flags[key] {
				mark = "Y"
			}
			marks[i] = fmt.Sprintf("%4s", mark)
		}
		fmt.Fprintf(b, "  %-8s %s  %d/%d\n", symbol, strings.Join(marks, "  "), flags.Count(), len(sourceOrder))
	}
}
