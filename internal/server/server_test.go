package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/snapshot"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Paths.OutputDir = dir
	cfg.Paths.SnapshotDir = filepath.Join(dir, "snapshots")
	cfg.Server.Port = 0
	return New(cfg, zap.NewNop()), dir
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVizdataNotGenerated(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vizdata", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVizdataServesFile(t *testing.T) {
	s, dir := testServer(t)
	payload := `{"nodes":[],"edges":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vizdata.json"), []byte(payload), 0o600))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vizdata", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, payload, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSnapshotsEndpoint(t *testing.T) {
	s, dir := testServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "empty history serves an empty list")

	store := snapshot.NewStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, store.Save(snapshot.Snapshot{Date: "2026-08-28", TotalGenes: 95}))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snaps []snapshot.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, 95, snaps[0].TotalGenes)
}

func TestStaticSiteServed(t *testing.T) {
	s, dir := testServer(t)
	siteDir := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(siteDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<!DOCTYPE html><html></html>"), 0o600))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}
