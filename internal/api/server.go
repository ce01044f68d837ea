// Package api provides the HTTP API server for LifeLens.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lifelens/lifelens/internal/core"
	"github.com/lifelens/lifelens/internal/logging"
)

// SummaryService is the engine surface the API exposes.
type SummaryService interface {
	GenerateDailySummary(ctx context.Context, date string, opts core.SummaryOptions) (*core.DailySummary, error)
	GenerateWeeklySummary(ctx context.Context, startDate, endDate string) (*core.WeeklySummary, error)
	GetInsights(ctx context.Context, date string) ([]core.Insight, error)
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	summaries  SummaryService
	log        *logging.Logger
}

// Config for the server
type Config struct {
	Host      string
	Port      int
	Summaries SummaryService
	Logger    *logging.Logger
}

// New creates a new API server
func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8420
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	s := &Server{
		summaries: cfg.Summaries,
		log:       cfg.Logger,
	}
	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.router,
	}

	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/summary/daily", s.handleDailySummary)
		r.Get("/summary/weekly", s.handleWeeklySummary)
		r.Get("/insights", s.handleInsights)
	})

	r.Get("/health", s.handleHealth)

	s.router = r
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("API server starting")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- Handlers ---

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	opts := core.SummaryOptions{
		IncludeNarrative: r.URL.Query().Get("narrative") == "true",
		IncludeDetailed:  r.URL.Query().Get("detailed") == "true",
	}

	sum, err := s.summaries.GenerateDailySummary(r.Context(), date, opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		s.respondError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}

	week, err := s.summaries.GenerateWeeklySummary(r.Context(), start, end)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, week)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	insights, err := s.summaries.GetInsights(r.Context(), date)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, insights)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// --- Response helpers ---

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrInvalidRange):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNoData):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("request failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
