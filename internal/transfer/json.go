package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
)

// Document is the JSON export layout.
type Document struct {
	ExportID      string         `json:"exportId,omitempty"`
	ExportDate    time.Time      `json:"exportDate"`
	ChoiceHistory []store.Choice `json:"choiceHistory"`
	CurrentScores ScoreSnapshot  `json:"currentScores"`
}

// ScoreSnapshot is the score state at export time. Importers ignore it.
type ScoreSnapshot struct {
	Abstract engine.CategoryScores     `json:"abstract"`
	Concrete engine.ConcreteProjection `json:"concrete"`
}

// ExportJSON writes the choice log and the scores as an indented document.
func ExportJSON(w io.Writer, choices []store.Choice, scores engine.Scores, now time.Time) error {
	if choices == nil {
		choices = []store.Choice{}
	}
	doc := Document{
		ExportID:      uuid.NewString(),
		ExportDate:    now.UTC(),
		ChoiceHistory: choices,
		CurrentScores: ScoreSnapshot{Abstract: scores.Abstract, Concrete: scores.Concrete},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ImportJSON appends every entry of the document's choiceHistory to dst and
// returns how many were appended. Ids in the document are ignored.
func ImportJSON(ctx context.Context, r io.Reader, dst Appender) (int, error) {
	var doc struct {
		ChoiceHistory *[]store.Choice `json:"choiceHistory"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, &ImportError{Err: fmt.Errorf("decode document: %w", err)}
	}
	if doc.ChoiceHistory == nil {
		return 0, &ImportError{Err: errors.New("document has no choiceHistory")}
	}
	return appendAll(ctx, dst, *doc.ChoiceHistory, 1)
}
