package normalize

import (
	"fmt"
	"sort"
)

// Report collects per-symbol outcomes for one normalizer run.
type Report struct {
	name   string
	ok     map[string]string
	cached map[string]string
	failed map[string]string
}

// NewReport starts an empty report for a named normalizer.
func NewReport(name string) *Report {
	return &Report{
		name:   name,
		ok:     make(map[string]string),
		cached: make(map[string]string),
		failed: make(map[string]string),
	}
}

// OK records a fresh successful fetch.
func (r *Report) OK(symbol, note string) { r.ok[symbol] = note }

// Cached records a cache hit.
func (r *Report) Cached(symbol, note string) { r.cached[symbol] = note }

// Failed records a per-gene failure. The batch continues.
func (r *Report) Failed(symbol, reason string) { r.failed[symbol] = reason }

// Counts returns (fetched, cached, failed).
func (r *Report) Counts() (int, int, int) {
	return len(r.ok), len(r.cached), len(r.failed)
}

// FailedSymbols returns the sorted list of symbols that failed.
func (r *Report) FailedSymbols() []string {
	out := make([]string, 0, len(r.failed))
	for sym := range r.failed {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Succeeded reports whether at least one symbol produced data.
func (r *Report) Succeeded() bool {
	return len(r.ok)+len(r.cached) > 0
}

// Summary renders the closing stats line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d fetched, %d cached, %d failed",
		r.name, len(r.ok), len(r.cached), len(r.failed))
}
