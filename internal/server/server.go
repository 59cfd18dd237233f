// Package server serves the generated pipeline artifacts for preview.
//
// The static site, vizdata, and snapshot history are read straight off
// the output directory on each request so a fresh generator run shows up
// without a restart.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/metrics"
	"github.com/lacuene/lacuene/internal/snapshot"
)

// Server is the artifact preview server.
type Server struct {
	cfg    config.Config
	logger *zap.Logger
	snaps  *snapshot.Store
}

// New builds a Server over the configured output directory.
func New(cfg config.Config, logger *zap.Logger) *Server {
	metrics.Init()
	return &Server{
		cfg:    cfg,
		logger: logger,
		snaps:  snapshot.NewStore(cfg.Paths.SnapshotDir),
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/api/vizdata", s.handleVizdata)
	r.Get("/api/snapshots", s.handleSnapshots)
	r.Handle("/*", http.FileServer(http.Dir(s.siteDir())))
	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening",
			zap.Int("port", s.cfg.Server.Port),
			zap.String("site_dir", s.siteDir()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

func (s *Server) siteDir() string {
	return filepath.Join(s.cfg.Paths.OutputDir, "site")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVizdata serves the graph JSON generated by the vizdata command.
func (s *Server) handleVizdata(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.Paths.OutputDir, "vizdata.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "vizdata not generated yet"})
		return
	}
	if err != nil {
		s.logger.Error("read vizdata", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read vizdata"})
		return
	}

	metrics.ObserveArtifact("vizdata", len(raw))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// handleSnapshots serves the date-sorted snapshot history.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.snaps.Load()
	if err != nil {
		s.logger.Error("load snapshots", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load snapshots"})
		return
	}
	metrics.SetSnapshotCount(len(snaps))
	if snaps == nil {
		snaps = []snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
