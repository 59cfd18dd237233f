package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentShape(t *testing.T) {
	f := NewFragment("first comment", "second comment")
	f.OpenGene("SOX9")
	f.Bool("_in_demo", true)
	f.Int("count", 7)
	f.Float("score", 0.25)
	f.String("label", "plain")
	f.OpenList("items")
	f.StringItem("one")
	f.OpenStructItem()
	f.String("name", "nested")
	f.CloseStructItem()
	f.CloseList()
	f.CloseGene()

	want := `package froq

// first comment
// second comment

genes: {
	"SOX9": {
		_in_demo: true
		count: 7
		score: 0.25
		label: "plain"
		items: [
			"one",
			{
				name: "nested"
			},
		]
	}
}
`
	assert.Equal(t, want, f.Source())
}

func TestFragmentEscapesStrings(t *testing.T) {
	f := NewFragment()
	f.OpenGene("PAX3")
	f.String("title", `say "hi" to C:\path`)
	f.CloseGene()

	assert.Contains(t, f.Source(), `title: "say \"hi\" to C:\\path"`)
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `a\\b`, EscapeString(`a\b`))
	assert.Equal(t, `\"q\"`, EscapeString(`"q"`))
	assert.Equal(t, `\\\"`, EscapeString(`\"`))
}

func TestFragmentWriteFileCreatesDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model", "demo.cue")

	f := NewFragment("demo")
	f.OpenGene("TFAP2A")
	f.Bool("_in_demo", true)
	f.CloseGene()
	require.NoError(t, f.WriteFile(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Source(), string(got))
}

func TestFragmentDeterministicAcrossBuilds(t *testing.T) {
	build := func() string {
		data := map[string]int{"ZIC1": 1, "EDNRB": 2, "SOX10": 3}
		f := NewFragment("determinism")
		for _, sym := range sortedKeys(data) {
			f.OpenGene(sym)
			f.Int("count", data[sym])
			f.CloseGene()
		}
		return f.Source()
	}
	assert.Equal(t, build(), build())
}
