package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lazypower/lifeclock/internal/config"
	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	st := store.NewFallback(db)
	t.Cleanup(func() { st.Close() })

	eng := engine.New(st,
		engine.WithClock(func() time.Time { return testNow }),
		engine.WithTickInterval(time.Millisecond),
	)
	eng.Init(context.Background())
	t.Cleanup(eng.Close)

	srv := New(eng, config.Default().Display, "test-version")
	srv.now = func() time.Time { return testNow }
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["persistent"] != true {
		t.Errorf("persistent = %v, want true", body["persistent"])
	}
	if body["countdown"] != false {
		t.Errorf("countdown = %v, want false", body["countdown"])
	}
}

func TestDisplayEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/display", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var body map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, key := range []string{"showTotalClock", "showMinuteBoxes", "showSecondBoxes", "showScenarioClocks"} {
		if !body[key] {
			t.Errorf("%s = false, want true", key)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
