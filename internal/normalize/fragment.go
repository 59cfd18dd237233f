package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Fragment accumulates CUE source for one normalizer's model output.
//
// The emitted shape is always a mapping from gene symbol to a nested
// record of that source's fields:
//
//	package froq
//
//	// comment lines
//
//	genes: {
//		"SOX9": { ... }
//	}
type Fragment struct {
	b     strings.Builder
	depth int
}

// NewFragment opens a fragment with the shared package header and a
// per-source comment block.
func NewFragment(comments ...string) *Fragment {
	f := &Fragment{}
	f.b.WriteString("package froq\n\n")
	for _, c := range comments {
		f.b.WriteString("// " + c + "\n")
	}
	f.b.WriteString("\ngenes: {\n")
	f.depth = 1
	return f
}

// OpenGene starts the record for one symbol.
func (f *Fragment) OpenGene(symbol string) {
	f.line("%q: {", symbol)
	f.depth++
}

// CloseGene ends the current symbol's record.
func (f *Fragment) CloseGene() {
	f.depth--
	f.line("}")
}

// Bool emits a boolean field.
func (f *Fragment) Bool(name string, v bool) {
	f.line("%s: %t", name, v)
}

// Int emits an integer field.
func (f *Fragment) Int(name string, v int) {
	f.line("%s: %d", name, v)
}

// Float emits a float field without trailing zero noise.
func (f *Fragment) Float(name string, v float64) {
	f.line("%s: %s", name, strconv.FormatFloat(v, 'g', -1, 64))
}

// String emits a string field, escaped for a CUE literal.
func (f *Fragment) String(name string, v string) {
	f.line(`%s: "%s"`, name, EscapeString(v))
}

// OpenList starts a list field.
func (f *Fragment) OpenList(name string) {
	f.line("%s: [", name)
	f.depth++
}

// CloseList ends the current list.
func (f *Fragment) CloseList() {
	f.depth--
	f.line("]")
}

// StringItem emits one quoted list element.
func (f *Fragment) StringItem(v string) {
	f.line(`"%s",`, EscapeString(v))
}

// OpenStructItem starts a struct list element.
func (f *Fragment) OpenStructItem() {
	f.line("{")
	f.depth++
}

// CloseStructItem ends a struct list element.
func (f *Fragment) CloseStructItem() {
	f.depth--
	f.line("},")
}

func (f *Fragment) line(format string, args ...any) {
	f.b.WriteString(strings.Repeat("\t", f.depth))
	fmt.Fprintf(&f.b, format, args...)
	f.b.WriteByte('\n')
}

// Source closes the top-level mapping and returns the CUE text.
func (f *Fragment) Source() string {
	return f.b.String() + "}\n"
}

// WriteFile persists the fragment, creating the model directory if needed.
func (f *Fragment) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(f.Source()), 0o600); err != nil {
		return fmt.Errorf("write fragment %s: %w", path, err)
	}
	return nil
}

// EscapeString escapes characters that would break a CUE string literal.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// sortedKeys returns the map keys in sorted order so fragments and caches
// serialize deterministically.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
