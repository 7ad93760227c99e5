package store

import (
	"context"
	"io"
	"log"
	"sync"
)

// Fallback fronts a durable backend with an in-memory mirror. The first
// failure of the durable backend marks the store unavailable, and from then on
// every operation is served by the mirror for the rest of the session.
// None of its methods return storage errors.
type Fallback struct {
	mu          sync.Mutex
	primary     Backend
	mirror      *Memory
	unavailable bool
}

// NewFallback wraps primary. A nil primary starts the store unavailable.
func NewFallback(primary Backend) *Fallback {
	return &Fallback{
		primary:     primary,
		mirror:      NewMemory(),
		unavailable: primary == nil,
	}
}

// OpenFallback opens the SQLite database at path. If that fails the error is
// logged and the returned store runs in memory only.
func OpenFallback(path string) *Fallback {
	db, err := Open(path)
	if err != nil {
		log.Printf("store: %v; running without persistence", err)
		return NewFallback(nil)
	}
	return NewFallback(db)
}

// Available reports whether operations still reach the durable backend.
func (f *Fallback) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

// durable returns the primary backend, or nil once the store is unavailable.
func (f *Fallback) durable() Backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil
	}
	return f.primary
}

func (f *Fallback) degrade(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.unavailable {
		log.Printf("store: %s: %v; continuing in memory", op, err)
	}
	f.unavailable = true
}

// Append records c and returns it with an assigned id.
func (f *Fallback) Append(ctx context.Context, c Choice) Choice {
	if db := f.durable(); db != nil {
		stored, err := db.AppendChoice(ctx, c)
		if err == nil {
			f.mirror.mirror(stored)
			return stored
		}
		f.degrade("append choice", err)
	}
	stored, _ := f.mirror.AppendChoice(ctx, c)
	return stored
}

// LoadAll returns every recorded choice. Callers must not rely on ordering.
func (f *Fallback) LoadAll(ctx context.Context) []Choice {
	if db := f.durable(); db != nil {
		choices, err := db.LoadChoices(ctx)
		if err == nil {
			f.mirror.replace(choices)
			return choices
		}
		f.degrade("load choices", err)
	}
	choices, _ := f.mirror.LoadChoices(ctx)
	return choices
}

// ClearChoices removes the whole choice log.
func (f *Fallback) ClearChoices(ctx context.Context) {
	if db := f.durable(); db != nil {
		if err := db.ClearChoices(ctx); err != nil {
			f.degrade("clear choices", err)
		}
	}
	f.mirror.ClearChoices(ctx)
}

// PutLifeParameters replaces the parameter record.
func (f *Fallback) PutLifeParameters(ctx context.Context, p LifeParameters) {
	if db := f.durable(); db != nil {
		if err := db.PutLifeParameters(ctx, p); err != nil {
			f.degrade("put life parameters", err)
		}
	}
	f.mirror.PutLifeParameters(ctx, p)
}

// GetLifeParameters returns the parameter record and whether one exists.
func (f *Fallback) GetLifeParameters(ctx context.Context) (LifeParameters, bool) {
	if db := f.durable(); db != nil {
		p, err := db.GetLifeParameters(ctx)
		if err == nil {
			if p == nil {
				return LifeParameters{}, false
			}
			f.mirror.PutLifeParameters(ctx, *p)
			return *p, true
		}
		f.degrade("get life parameters", err)
	}
	p, _ := f.mirror.GetLifeParameters(ctx)
	if p == nil {
		return LifeParameters{}, false
	}
	return *p, true
}

// Close releases the durable backend if it holds resources.
func (f *Fallback) Close() error {
	if c, ok := f.primary.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
