package runner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/normalize"
)

type fakeSource struct {
	name      string
	cacheFile string
}

func (s fakeSource) Name() string      { return s.name }
func (s fakeSource) CacheFile() string { return s.cacheFile }

func (s fakeSource) Run(context.Context, *normalize.Env) error {
	panic("coordinator must not call Run in-process")
}

func testRunner(t *testing.T, script string) *Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test uses a shell fake")
	}
	cfg := config.Config{}
	cfg.Runner.Concurrency = 2
	cfg.Runner.StaleDays = 30

	r := New(cfg, zap.NewNop())
	r.root = t.TempDir()
	r.newCmd = func(ctx context.Context, source string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	return r
}

func writeCache(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
}

func TestTail(t *testing.T) {
	assert.Equal(t, []string{"c", "d", "e"}, tail("a\nb\nc\nd\ne\n", 3))
	assert.Equal(t, []string{"only"}, tail("only\n\n\n", 3))
	assert.Nil(t, tail("", 3))
}

func TestRunCollectsOutputTail(t *testing.T) {
	r := testRunner(t, "echo one; echo two; echo three; echo four")
	results, err := r.Run(context.Background(), []normalize.Source{fakeSource{name: "alpha"}}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"two", "three", "four"}, results[0].Tail)
	assert.NoError(t, results[0].Err)
}

func TestRunReportsFailures(t *testing.T) {
	r := testRunner(t, "echo boom >&2; exit 3")
	results, err := r.Run(context.Background(), []normalize.Source{
		fakeSource{name: "alpha"},
		fakeSource{name: "beta"},
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 normalizers failed")
	for _, res := range results {
		assert.Error(t, res.Err)
		assert.Equal(t, []string{"boom"}, res.Tail)
	}
}

func TestRunSkipsFreshCaches(t *testing.T) {
	r := testRunner(t, "echo ran")

	fresh := filepath.Join("data", "alpha", "cache.json")
	writeCache(t, r.root, fresh)

	results, err := r.Run(context.Background(), []normalize.Source{
		fakeSource{name: "alpha", cacheFile: fresh},
		fakeSource{name: "beta", cacheFile: filepath.Join("data", "beta", "cache.json")},
		fakeSource{name: "gamma"},
	}, false)
	require.NoError(t, err)

	assert.True(t, results[0].Skipped)
	assert.Contains(t, results[0].Reason, "fresh")
	assert.False(t, results[1].Skipped, "missing cache file must run")
	assert.False(t, results[2].Skipped, "source without cache file must run")
}

func TestRunForceOverridesFreshness(t *testing.T) {
	r := testRunner(t, "echo ran")

	fresh := filepath.Join("data", "alpha", "cache.json")
	writeCache(t, r.root, fresh)

	results, err := r.Run(context.Background(), []normalize.Source{
		fakeSource{name: "alpha", cacheFile: fresh},
	}, true)
	require.NoError(t, err)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, "forced", results[0].Reason)
}

func TestRunTreatsOldCacheAsStale(t *testing.T) {
	r := testRunner(t, "echo ran")
	r.now = func() time.Time { return time.Now().Add(45 * 24 * time.Hour) }

	old := filepath.Join("data", "alpha", "cache.json")
	writeCache(t, r.root, old)

	results, err := r.Run(context.Background(), []normalize.Source{
		fakeSource{name: "alpha", cacheFile: old},
	}, false)
	require.NoError(t, err)
	assert.False(t, results[0].Skipped)
}
