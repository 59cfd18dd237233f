package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCountsAndSummary(t *testing.T) {
	r := NewReport("demo")
	r.OK("SOX9", "")
	r.OK("PAX3", "")
	r.Cached("EDNRB", "")
	r.Failed("ZEB2", "timeout")
	r.Failed("KIT", "404")

	fetched, cached, failed := r.Counts()
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 1, cached)
	assert.Equal(t, 2, failed)
	assert.Equal(t, "demo: 2 fetched, 1 cached, 2 failed", r.Summary())
	assert.Equal(t, []string{"KIT", "ZEB2"}, r.FailedSymbols())
	assert.True(t, r.Succeeded())
}

func TestReportAllFailed(t *testing.T) {
	r := NewReport("demo")
	r.Failed("SOX9", "boom")
	assert.False(t, r.Succeeded())
}
