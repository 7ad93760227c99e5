package server

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
	"github.com/lazypower/lifeclock/internal/transfer"
)

// maxImportBytes caps import request bodies.
const maxImportBytes = 10 << 20

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"questions": engine.Questions()})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	category := store.Category(chi.URLParam(r, "category"))
	if !category.Valid() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown category %q", category))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"impacts": s.engine.Preview(category)})
}

func (s *Server) handleListChoices(w http.ResponseWriter, r *http.Request) {
	choices := s.engine.Choices()
	if choices == nil {
		choices = []store.Choice{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"choices": choices})
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category store.Category `json:"category"`
		Value    string         `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := s.engine.Choose(r.Context(), req.Category, req.Value)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	p, ok := s.engine.LifeParameters()
	if !ok {
		writeError(w, http.StatusNotFound, "life parameters not set")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutParameters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DOB        string   `json:"dob"`
		Conditions []string `json:"conditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var dob time.Time
	if req.DOB != "" {
		var err error
		dob, err = time.Parse(time.DateOnly, req.DOB)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dob must be YYYY-MM-DD")
			return
		}
	}

	p, err := s.engine.SetLifeParameters(r.Context(), dob, engine.ParseConditions(req.Conditions))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores := s.engine.Scores()
	resp := map[string]any{
		"abstract":  scores.Abstract,
		"aggregate": scores.Aggregate,
		"concrete":  scores.Concrete,
	}

	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be a non-negative integer")
			return
		}
		resp["timeframes"] = engine.ProjectTimeframes(scores.Abstract, rand.New(rand.NewPCG(seed, seed)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	state, ok := s.engine.Countdown()
	if !ok {
		writeError(w, http.StatusNotFound, "life parameters not set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"running":   s.engine.CountdownRunning(),
		"expired":   state.Expired(),
		"countdown": state,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := transfer.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		var err error
		if format, err = transfer.ParseFormat(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	now := s.now()
	name := fmt.Sprintf("life-choices-%s.%s", now.UTC().Format(time.DateOnly), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	choices := s.engine.Choices()
	if format == transfer.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		transfer.ExportCSV(w, choices)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	transfer.ExportJSON(w, choices, s.engine.Scores(), now)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := transfer.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		var err error
		if format, err = transfer.ParseFormat(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	n, err := transfer.Import(r.Context(), format, body, s.engine)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    err.Error(),
			"imported": n,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": n})
}

// writeEngineError maps validation failures to 400 and anything else to 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
