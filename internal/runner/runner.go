// Package runner coordinates parallel normalizer execution.
//
// Each normalizer runs as a subprocess of the pipeline binary so one
// misbehaving source cannot take down the whole batch. A bounded worker
// pool keeps the external APIs from seeing a burst of parallel clients.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/normalize"
)

// tailLines is how many trailing output lines each result keeps.
const tailLines = 3

// Result is the outcome of one normalizer subprocess.
type Result struct {
	Source   string
	Skipped  bool
	Reason   string
	Err      error
	Duration time.Duration
	// Tail holds the last few output lines, for failure triage.
	Tail []string
}

// Runner executes normalizers with bounded parallelism and cache-age
// based skipping.
type Runner struct {
	cfg    config.Config
	logger *zap.Logger

	// root anchors the relative cache paths the sources report.
	root string
	now  func() time.Time
	// newCmd builds the subprocess for one source; injectable in tests.
	newCmd func(ctx context.Context, source string) *exec.Cmd
}

// New builds a Runner that re-invokes the current binary for each source.
func New(cfg config.Config, logger *zap.Logger) *Runner {
	binary, err := os.Executable()
	if err != nil {
		binary = os.Args[0]
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		root:   ".",
		now:    time.Now,
		newCmd: func(ctx context.Context, source string) *exec.Cmd {
			return exec.CommandContext(ctx, binary, "normalize", source)
		},
	}
}

// Run executes the given sources, skipping those whose cache files are
// still fresh unless force is set. It returns every result and a non-nil
// error iff at least one subprocess failed.
func (r *Runner) Run(ctx context.Context, sources []normalize.Source, force bool) ([]Result, error) {
	runID := uuid.NewString()
	concurrency := r.cfg.Runner.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	r.logger.Info("starting normalizer run",
		zap.String("run_id", runID),
		zap.Int("sources", len(sources)),
		zap.Int("concurrency", concurrency),
		zap.Bool("force", force))

	results := make([]Result, len(sources))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		run, reason := r.shouldRun(src, force)
		if !run {
			results[i] = Result{Source: src.Name(), Skipped: true, Reason: reason}
			r.logger.Info("skipping normalizer",
				zap.String("run_id", runID),
				zap.String("source", src.Name()),
				zap.String("reason", reason))
			continue
		}

		wg.Add(1)
		go func(i int, src normalize.Source, reason string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res := r.runOne(ctx, runID, src)
			res.Reason = reason
			results[i] = res
		}(i, src, reason)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d normalizers failed", failed, len(sources))
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, runID string, src normalize.Source) Result {
	start := r.now()
	r.logger.Info("running normalizer",
		zap.String("run_id", runID),
		zap.String("source", src.Name()))

	cmd := r.newCmd(ctx, src.Name())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	res := Result{
		Source:   src.Name(),
		Err:      err,
		Duration: r.now().Sub(start),
		Tail:     tail(out.String(), tailLines),
	}

	if err != nil {
		r.logger.Error("normalizer failed",
			zap.String("run_id", runID),
			zap.String("source", src.Name()),
			zap.Duration("duration", res.Duration),
			zap.Strings("tail", res.Tail),
			zap.Error(err))
	} else {
		r.logger.Info("normalizer finished",
			zap.String("run_id", runID),
			zap.String("source", src.Name()),
			zap.Duration("duration", res.Duration))
	}
	return res
}

// shouldRun applies the cache-age policy: forced runs and sources with
// no designated cache file always run; otherwise the cache file must
// exist and be younger than the configured maximum age.
func (r *Runner) shouldRun(src normalize.Source, force bool) (bool, string) {
	if force {
		return true, "forced"
	}
	rel := src.CacheFile()
	if rel == "" {
		return true, "no cache file"
	}
	info, err := os.Stat(filepath.Join(r.root, rel))
	if err != nil {
		return true, "cache missing"
	}
	age := r.now().Sub(info.ModTime())
	if age > r.cfg.StaleAge() {
		return true, fmt.Sprintf("cache %s old", age.Round(time.Hour))
	}
	return false, fmt.Sprintf("cache fresh (%s old)", age.Round(time.Hour))
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
