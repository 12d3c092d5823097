// Package api provides the HTTP server for StockPulse.
//
// It exposes the report pipeline as JSON or rendered documents, a standalone
// sentiment endpoint, a WebSocket stream of build progress, and the embedded
// single-page UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/stockpulse/internal/config"
	"github.com/seenimoa/stockpulse/internal/report"
	"github.com/seenimoa/stockpulse/pkg/logger"
	"github.com/seenimoa/stockpulse/pkg/models"
	"github.com/seenimoa/stockpulse/web"
)

// Version is reported by the health endpoint. It is set by the CLI.
var Version = "dev"

// ReportBuilder produces reports and streams build progress.
type ReportBuilder interface {
	BuildWithObserver(ctx context.Context, ticker string, obs report.Observer) (*report.Report, error)
}

// SentimentScorer scores free text.
type SentimentScorer interface {
	Score(text string) models.SentimentLabel
	Compound(text string) float64
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	builder ReportBuilder
	scorer  SentimentScorer
	log     *logger.Logger
	serveUI bool // when true, serve the embedded web UI at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, builder ReportBuilder, scorer SentimentScorer, log *logger.Logger) *Server {
	srv := &Server{
		cfg:     cfg,
		builder: builder,
		scorer:  scorer,
		log:     log.Named("api"),
		serveUI: true,
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled or the process is
// interrupted, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", logger.StringField("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Report-Incomplete"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/sentiment", s.handleSentiment)
		r.Get("/report/{ticker}", s.handleReport)
		r.Get("/ws", s.handleWebSocket)
	})

	if s.serveUI {
		s.mountUI(r, web.StaticFS())
	}
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.Report.Timeout > 0 {
		return s.cfg.Report.Timeout
	}
	return 2 * time.Minute
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("request",
				logger.StringField("method", r.Method),
				logger.StringField("path", r.URL.Path),
				logger.IntField("status", ww.Status()),
				logger.IntField("bytes", ww.BytesWritten()),
				logger.DurationField("took", time.Since(start)),
				logger.StringField("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// mountUI serves the embedded single page and its assets.
func (s *Server) mountUI(r chi.Router, staticFS fs.FS) {
	fileServer := http.FileServerFS(staticFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" || rPath == "index.html" {
			serveIndexHTML(w, staticFS)
			return
		}
		f, err := staticFS.Open(rPath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f.Close()
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, staticFS fs.FS) {
	data, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ════════════════════════════════════════════════════════════════════
// Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SentimentResponse is the payload of GET /api/sentiment.
type SentimentResponse struct {
	Text     string                `json:"text"`
	Label    models.SentimentLabel `json:"label"`
	Display  string                `json:"display"`
	Compound float64               `json:"compound"`
}

// HealthResponse is the payload of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:  "ok",
			Version: Version,
			Time:    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleReport builds a report for {ticker}. The format query parameter
// selects json (default), text, markdown, or html.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := report.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := report.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	rep, err := s.builder.BuildWithObserver(ctx, chi.URLParam(r, "ticker"), nil)
	if rep == nil {
		switch {
		case errors.Is(err, report.ErrEmptyTicker):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "no report produced")
		}
		return
	}

	incomplete := ""
	if err != nil {
		incomplete = "report incomplete: " + err.Error()
		w.Header().Set("X-Report-Incomplete", "true")
	}

	if format == report.FormatJSON {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep, Error: incomplete})
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, rep, format); err != nil {
		s.log.Error("render report", logger.StringField("ticker", rep.Ticker), logger.ErrorField(err))
	}
}

// handleSentiment scores the text query parameter.
func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	label := s.scorer.Score(text)
	resp := SentimentResponse{
		Text:    text,
		Label:   label,
		Display: label.Display(),
	}
	if text != "" {
		resp.Compound = s.scorer.Compound(text)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
