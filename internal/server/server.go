// Package server exposes map generation, patching and the reliability
// suite over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/store"
)

// maxBodyBytes bounds request bodies; an 80x80 map is well under this.
const maxBodyBytes = 8 << 20

// Archive persists suite reports. *store.Store satisfies it.
type Archive interface {
	SaveReport(ctx context.Context, r *harness.Report) error
	LatestRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
	ReplayCases(ctx context.Context, runID string) ([]harness.ReplayCase, error)
}

// Options configures the router.
type Options struct {
	// MaxSuiteRuns caps scenarios × runs for POST /api/suite.
	MaxSuiteRuns int

	// SuiteDefaults fills fields a suite request leaves unset.
	SuiteDefaults harness.Options

	// Archive is optional; without it suite reports are not stored.
	Archive Archive
}

// NewRouter configures all routes and returns the router.
func NewRouter(opts Options) http.Handler {
	if opts.MaxSuiteRuns <= 0 {
		opts.MaxSuiteRuns = 500
	}
	h := &handler{opts: opts}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/patch", h.Patch)
		r.Get("/scenarios", h.Scenarios)
		r.Post("/suite", h.RunSuite)
		r.Get("/suite/runs", h.SuiteRuns)
		r.Get("/suite/runs/{id}/replay", h.ReplayCases)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request at debug level with its status and
// duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON", "error", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
