package normalize

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/fetch"
	"github.com/lacuene/lacuene/internal/genes"
)

func TestAllNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range All() {
		require.NotEmpty(t, s.Name())
		assert.False(t, seen[s.Name()], "duplicate normalizer name %s", s.Name())
		seen[s.Name()] = true
	}
	assert.Len(t, seen, 12)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("clinvar")
	require.True(t, ok)
	assert.Equal(t, "clinvar", s.Name())

	_, ok = Lookup("nosuch")
	assert.False(t, ok)
}

func TestAlwaysRunSourcesHaveNoCacheFile(t *testing.T) {
	for _, name := range []string{"go", "omim", "uniprot"} {
		s, ok := Lookup(name)
		require.True(t, ok)
		assert.Empty(t, s.CacheFile(), "%s should have no cache file", name)
	}
	s, ok := Lookup("gnomad")
	require.True(t, ok)
	assert.Equal(t, "data/gnomad/gnomad_cache.json", s.CacheFile())
}

func testEnv(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.ModelDir = filepath.Join(dir, "model")
	cfg.HTTP.TimeoutSeconds = 5
	cfg.HTTP.MaxRetries = 0
	cfg.HTTP.BackoffBase = 2.0

	client := fetch.New(fetch.Config{
		Timeout:     5 * time.Second,
		MaxRetries:  0,
		BackoffBase: 2.0,
	}, zap.NewNop())

	return &Env{
		Cfg:    cfg,
		Client: client,
		Logger: zap.NewNop(),
		Out:    &bytes.Buffer{},
		sleep:  func(context.Context, time.Duration) error { return nil },
	}
}

func TestClinicalTrialsCacheThrough(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "true", r.URL.Query().Get("countTotal"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount": 3}`))
	}))
	defer srv.Close()

	env := testEnv(t)
	n := &ClinicalTrials{baseURL: srv.URL}

	// First pass hits the API once per gene.
	require.NoError(t, n.Run(context.Background(), env))
	first := hits.Load()
	assert.Equal(t, int64(len(genes.Registry)), first)

	cachePath := env.DataPath("clinicaltrials", "clinicaltrials_cache.json")
	_, err := os.Stat(cachePath)
	require.NoError(t, err)

	fragment, err := os.ReadFile(env.ModelPath("clinicaltrials.cue"))
	require.NoError(t, err)
	assert.Contains(t, string(fragment), "package froq")
	assert.Contains(t, string(fragment), "active_trial_count: 3")

	// Second pass is fully served from the cache.
	require.NoError(t, n.Run(context.Background(), env))
	assert.Equal(t, first, hits.Load())
}

func TestClinicalTrialsSkipsFailedGenes(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount": 1}`))
	}))
	defer srv.Close()

	env := testEnv(t)
	n := &ClinicalTrials{baseURL: srv.URL}
	require.NoError(t, n.Run(context.Background(), env))

	// One gene failed, the rest made it into the fragment.
	fragment, err := os.ReadFile(env.ModelPath("clinicaltrials.cue"))
	require.NoError(t, err)
	assert.Contains(t, string(fragment), "active_trial_count: 1")
}
