// Package cuemodel invokes the external declarative model tool.
//
// The unified gene model, its invariants, and its projections live in CUE;
// this package shells out to the cue binary for export and validation and
// treats its semantics as a fixed external contract.
package cuemodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes model tool commands against one model directory.
type Runner struct {
	binary   string
	modelDir string
}

// New builds a Runner. binary defaults to "cue" when empty.
func New(binary, modelDir string) *Runner {
	if binary == "" {
		binary = "cue"
	}
	return &Runner{binary: binary, modelDir: modelDir}
}

// Export evaluates an expression against the model and decodes the JSON
// result into v.
func (r *Runner) Export(ctx context.Context, expr string, v any) error {
	raw, err := r.ExportRaw(ctx, expr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode export of %q: %w", expr, err)
	}
	return nil
}

// ExportRaw evaluates an expression and returns the raw JSON output.
func (r *Runner) ExportRaw(ctx context.Context, expr string) (json.RawMessage, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "export", r.modelDir, "-e", expr)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cue export -e %q failed: %w: %s", expr, err, strings.TrimSpace(stderr.String()))
	}
	return json.RawMessage(stdout.Bytes()), nil
}

// Vet validates the model directory. A non-zero exit is returned as an
// error carrying the tool's stderr text.
func (r *Runner) Vet(ctx context.Context) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "vet", "-c", r.modelDir)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cue vet failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Available reports whether the model tool binary can be resolved.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}
