// Package normalize implements the per-source adapters that fetch, cache,
// and reshape external data into the canonical model format.
//
// Every normalizer follows the same cache-through pattern: for each symbol
// in the canonical gene list, reuse the per-source cache on hit; on miss,
// query the source's API with a fixed inter-request delay, record failures
// without aborting the batch, write through to the cache in one batched
// save, and serialize the collected fragment into the model's source
// syntax.
package normalize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/fetch"
)

// Source is one per-source normalizer.
type Source interface {
	// Name is the identifier used on the command line and in run reports.
	Name() string
	// CacheFile returns the path (relative to the repo root) the
	// coordinator checks for staleness, or "" when the source has no
	// designated cache file and must always run.
	CacheFile() string
	// Run executes the full normalize pass for this source.
	Run(ctx context.Context, env *Env) error
}

// Env carries the shared dependencies a normalizer needs.
type Env struct {
	Cfg    config.Config
	Client *fetch.Client
	Logger *zap.Logger
	// Out receives per-gene progress lines; the coordinator surfaces the
	// last few of them per normalizer.
	Out io.Writer

	// sleep is injectable so tests skip the inter-request delay.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEnv builds an Env with the standard fetch client and stdout progress.
func NewEnv(cfg config.Config, logger *zap.Logger) *Env {
	client := fetch.New(fetch.Config{
		Timeout:     cfg.HTTPTimeout(),
		MaxRetries:  cfg.HTTP.MaxRetries,
		BackoffBase: cfg.HTTP.BackoffBase,
		UserAgent:   "lacuene-pipeline/1.0 (+https://github.com/lacuene/lacuene)",
	}, logger)
	return &Env{
		Cfg:    cfg,
		Client: client,
		Logger: logger,
		Out:    os.Stdout,
		sleep:  sleepCtx,
	}
}

// Printf writes a progress line for the coordinator's output tail.
func (e *Env) Printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format+"\n", args...)
}

// Delay applies the fixed inter-request delay.
func (e *Env) Delay(ctx context.Context) error {
	return e.sleep(ctx, e.Cfg.RequestDelay())
}

// DataPath joins path elements under the configured data directory.
func (e *Env) DataPath(parts ...string) string {
	return filepath.Join(append([]string{e.Cfg.Paths.DataDir}, parts...)...)
}

// ModelPath returns the fragment output path for a source file.
func (e *Env) ModelPath(name string) string {
	return filepath.Join(e.Cfg.Paths.ModelDir, name)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// All returns every normalizer in coordinator order.
func All() []Source {
	return []Source{
		&GO{},
		&OMIM{},
		&HPO{},
		&UniProt{},
		&FaceBase{},
		&ClinVar{},
		&PubMed{},
		&Gnomad{},
		&NIHReporter{},
		&GTEx{},
		&ClinicalTrials{},
		&StringDB{},
	}
}

// Lookup finds a normalizer by name.
func Lookup(name string) (Source, bool) {
	for _, s := range All() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
