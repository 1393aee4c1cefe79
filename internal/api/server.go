// Package api exposes the HTTP trigger surface for the ingestion service.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/metrics"
	"github.com/jobpulse/ingestor/internal/orchestrator"
	"github.com/jobpulse/ingestor/internal/trigger"
)

// Config controls Server behavior.
type Config struct {
	// Secret guards the trigger endpoints. Empty means unauthenticated;
	// the server logs a hardening warning in that case.
	Secret string
	// RunTimeout bounds one triggered run.
	RunTimeout time.Duration
}

// Server wires HTTP handlers to the run trigger.
type Server struct {
	router  chi.Router
	trigger *trigger.Trigger
	cfg     Config
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(trg *trigger.Trigger, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	s := &Server{
		trigger: trg,
		cfg:     cfg,
		logger:  logger,
	}
	if cfg.Secret == "" {
		logger.Warn("trigger auth disabled: no secret configured")
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Secret != "" {
			r.Use(secretMiddleware(cfg.Secret))
		}
		r.Get("/crawl", s.runAll)
		r.Get("/crawl/{source}", s.runOne)
		r.Get("/sources", s.listSources)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) listSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"sources": s.trigger.Sources(),
	})
}

type runResponse struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	RunID        string                `json:"run_id,omitempty"`
	Total        int                   `json:"total"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	Results      []ingest.CrawlOutcome `json:"results"`
}

func (s *Server) runAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RunTimeout)
	defer cancel()

	report, err := s.trigger.RunAll(ctx)
	if err != nil {
		if errors.Is(err, trigger.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	total, succeeded, failed := report.Totals()
	writeJSON(w, http.StatusOK, runResponse{
		Success:      true,
		Message:      fmt.Sprintf("crawled %d sources", len(report.Outcomes)),
		RunID:        report.RunID,
		Total:        total,
		SuccessCount: succeeded,
		FailedCount:  failed,
		Results:      report.Outcomes,
	})
}

func (s *Server) runOne(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RunTimeout)
	defer cancel()

	outcome, err := s.trigger.RunOne(ctx, source)
	if err != nil {
		if errors.Is(err, orchestrator.ErrUnknownSource) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Success:      true,
		Message:      fmt.Sprintf("crawled %s", source),
		Total:        outcome.Total,
		SuccessCount: outcome.Succeeded,
		FailedCount:  outcome.Failed,
		Results:      []ingest.CrawlOutcome{outcome},
	})
}

// secretMiddleware rejects requests lacking the configured bearer secret
// before any crawling starts.
func secretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := bearerToken(r)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("secret")
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			duration := time.Since(start)
			metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
