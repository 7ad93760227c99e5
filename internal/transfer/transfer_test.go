package transfer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
)

var exportTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(store.NewFallback(store.NewMemory()), engine.WithClock(func() time.Time { return exportTime }))
	e.Init(context.Background())
	t.Cleanup(e.Close)
	return e
}

func sampleChoices() []store.Choice {
	return []store.Choice{
		{
			ID:        1,
			Timestamp: time.Date(2026, 10, 1, 8, 15, 30, 0, time.UTC),
			Category:  store.CategoryAction,
			Question:  "There's a difficult task you've been postponing. What do you decide to do?",
			Choice:    "Commit to tackling it today, despite the discomfort",
			Value:     "acting",
			Weight:    100,
		},
		{
			ID:        2,
			Timestamp: time.Date(2026, 10, 2, 21, 0, 5, 0, time.UTC),
			Category:  store.CategoryValidation,
			Question:  `She said "hello, world", then left`,
			Choice:    "Seek praise, achievements, and external recognition",
			Value:     "externalValidation",
			Weight:    0,
		},
	}
}

func sameChoices(t *testing.T, got, want []store.Choice) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("choices = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("[%d] timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
		g.Timestamp, w.Timestamp = time.Time{}, time.Time{}
		g.ID, w.ID = 0, 0
		if g != w {
			t.Errorf("[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{"CSV", FormatCSV, true},
		{" json ", FormatJSON, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if f, err := FormatFromPath("/tmp/life-choices-2026-10-18.CSV"); err != nil || f != FormatCSV {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
	if _, err := FormatFromPath("/tmp/export"); err == nil {
		t.Error("expected error for path without extension")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	choices := sampleChoices()
	scores := engine.CalculateScores(choices, exportTime)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, choices, scores, exportTime); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.ExportID == "" {
		t.Error("no export id")
	}
	if !doc.ExportDate.Equal(exportTime) {
		t.Errorf("exportDate = %v, want %v", doc.ExportDate, exportTime)
	}
	if doc.CurrentScores.Abstract[store.CategoryAction] != scores.Abstract[store.CategoryAction] {
		t.Errorf("abstract scores not exported")
	}
	if len(doc.CurrentScores.Concrete) != len(engine.Domains) {
		t.Errorf("concrete domains = %d, want %d", len(doc.CurrentScores.Concrete), len(engine.Domains))
	}

	e := testEngine(t)
	n, err := ImportJSON(context.Background(), &buf, e)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}
	sameChoices(t, e.Choices(), choices)
}

func TestJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, sampleChoices()[:1], engine.CalculateScores(nil, exportTime), exportTime); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"exportId"`, `"exportDate"`, `"choiceHistory"`, `"currentScores"`,
		`"timestamp"`, `"category"`, `"question"`, `"choice"`, `"value"`, `"weight"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("export missing key %s", key)
		}
	}
}

func TestExportJSONEmptyLog(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, nil, engine.CalculateScores(nil, exportTime), exportTime); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"choiceHistory": []`) {
		t.Errorf("empty log not exported as []:\n%s", buf.String())
	}
}

func TestImportJSONStripsIDs(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	if _, err := e.Choose(ctx, store.CategoryPresence, "present"); err != nil {
		t.Fatal(err)
	}

	doc := `{"choiceHistory":[{"id":1,"timestamp":"2026-10-01T08:00:00.000Z","category":"agency","question":"q","choice":"c","value":"personalAgency","weight":100}]}`
	if _, err := ImportJSON(ctx, strings.NewReader(doc), e); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	got := e.Choices()
	if len(got) != 2 {
		t.Fatalf("choices = %d, want 2", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Errorf("imported record reused id %d", got[1].ID)
	}
}

func TestImportJSONErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		row      int
		imported int
	}{
		{"not json", `{choiceHistory`, 0, 0},
		{"missing history", `{"exportId":"x"}`, 0, 0},
		{"bad category second", `{"choiceHistory":[
			{"timestamp":"2026-10-01T08:00:00Z","category":"action","weight":100},
			{"timestamp":"2026-10-01T09:00:00Z","category":"luck","weight":100},
			{"timestamp":"2026-10-01T10:00:00Z","category":"action","weight":0}]}`, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(t)
			n, err := ImportJSON(context.Background(), strings.NewReader(tt.doc), e)
			var ierr *ImportError
			if !errors.As(err, &ierr) {
				t.Fatalf("err = %v, want *ImportError", err)
			}
			if ierr.Row != tt.row {
				t.Errorf("row = %d, want %d", ierr.Row, tt.row)
			}
			if n != tt.imported || len(e.Choices()) != tt.imported {
				t.Errorf("imported = %d (log %d), want %d", n, len(e.Choices()), tt.imported)
			}
		})
	}
}

func TestImportErrorUnwrapsValidation(t *testing.T) {
	e := testEngine(t)
	doc := `{"choiceHistory":[{"category":"action","weight":500}]}`
	_, err := ImportJSON(context.Background(), strings.NewReader(doc), e)

	var verr *engine.ValidationError
	if !errors.As(err, &verr) || verr.Field != "weight" {
		t.Errorf("err = %v, want wrapped weight validation error", err)
	}
}

func TestJSONRoundTripSubMillisecond(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 123456789, time.UTC) }
	open := func() *engine.Engine {
		db, err := store.OpenMemory()
		if err != nil {
			t.Fatalf("OpenMemory: %v", err)
		}
		st := store.NewFallback(db)
		t.Cleanup(func() { st.Close() })
		e := engine.New(st, engine.WithClock(clock))
		e.Init(ctx)
		t.Cleanup(e.Close)
		return e
	}

	src := open()
	if _, err := src.Choose(ctx, store.CategoryAction, "acting"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := ExportJSON(&buf, src.Choices(), src.Scores(), clock()); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	dst := open()
	if _, err := ImportJSON(ctx, &buf, dst); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	got, want := dst.Choices()[0].Timestamp, src.Choices()[0].Timestamp
	if !got.Equal(want) {
		t.Errorf("imported timestamp = %v, want %v", got, want)
	}
}

func TestImportJSONRejectsUnsafeValue(t *testing.T) {
	e := testEngine(t)
	doc := `{"choiceHistory":[{"timestamp":"2026-10-01T08:00:00Z","category":"action","value":"a,b","weight":100}]}`
	n, err := ImportJSON(context.Background(), strings.NewReader(doc), e)

	var verr *engine.ValidationError
	if !errors.As(err, &verr) || verr.Field != "value" {
		t.Errorf("err = %v, want wrapped value validation error", err)
	}
	if n != 0 || len(e.Choices()) != 0 {
		t.Errorf("imported = %d (log %d), want 0", n, len(e.Choices()))
	}
}
