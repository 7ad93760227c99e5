package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/lazypower/lifeclock/internal/config"
	"github.com/lazypower/lifeclock/internal/engine"
)

// Server is the lifeclock HTTP API server.
type Server struct {
	engine  *engine.Engine
	display config.DisplayConfig
	router  chi.Router
	version string
	started time.Time
	now     func() time.Time
}

// New creates a Server over an initialized engine.
func New(eng *engine.Engine, display config.DisplayConfig, version string) *Server {
	s := &Server{
		engine:  eng,
		display: display,
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/display", s.handleDisplay)

		r.Get("/questions", s.handleQuestions)
		r.Get("/questions/{category}/preview", s.handlePreview)

		r.Get("/choices", s.handleListChoices)
		r.Post("/choices", s.handleChoose)
		r.Delete("/choices", s.handleReset)

		r.Get("/parameters", s.handleGetParameters)
		r.Put("/parameters", s.handlePutParameters)

		r.Get("/scores", s.handleScores)
		r.Get("/countdown", s.handleCountdown)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    s.version,
		"uptime":     time.Since(s.started).Seconds(),
		"persistent": s.engine.Store.Available(),
		"countdown":  s.engine.CountdownRunning(),
	})
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.display)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
