package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

// Store is the persistence the engine needs. Implementations absorb their
// own failures; see store.Fallback.
type Store interface {
	Append(ctx context.Context, c store.Choice) store.Choice
	LoadAll(ctx context.Context) []store.Choice
	ClearChoices(ctx context.Context)
	PutLifeParameters(ctx context.Context, p store.LifeParameters)
	GetLifeParameters(ctx context.Context) (store.LifeParameters, bool)
	Available() bool
}

// Engine is the single session: it owns the store handle, the cached choice
// log, the current life parameters and the countdown.
type Engine struct {
	Store Store

	now       func() time.Time
	interval  time.Duration
	onTick    func(CountdownState)
	countdown *Countdown

	mu      sync.Mutex
	choices []store.Choice
	params  *store.LifeParameters
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithTickInterval sets how often the countdown recomputes.
func WithTickInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.interval = d }
}

// WithTickHandler receives every countdown tick. The handler must not stop
// the countdown.
func WithTickHandler(fn func(CountdownState)) EngineOption {
	return func(e *Engine) { e.onTick = fn }
}

// New creates an Engine over st. Call Init before using it.
func New(st Store, opts ...EngineOption) *Engine {
	e := &Engine{
		Store:    st,
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.countdown = NewCountdown(e.interval, e.now, e.aggregate, e.onTick)
	return e
}

// Init loads the choice log, then the life parameters, and starts the
// countdown when parameters exist. Each step depends on the previous one.
func (e *Engine) Init(ctx context.Context) {
	choices := e.Store.LoadAll(ctx)
	params, ok := e.Store.GetLifeParameters(ctx)

	e.mu.Lock()
	e.choices = choices
	e.params = nil
	if ok {
		e.params = &params
	}
	e.mu.Unlock()

	if ok {
		e.countdown.Start(params)
	}
}

// Close stops the countdown.
func (e *Engine) Close() {
	e.countdown.Stop()
}

// Append validates and stores a choice. A zero timestamp is set to now, the
// timestamp is cut to milliseconds, CRLF in the texts becomes LF, and any id
// is replaced by the one the store assigns.
func (e *Engine) Append(ctx context.Context, c store.Choice) (store.Choice, error) {
	if !c.Category.Valid() {
		return store.Choice{}, &ValidationError{Field: "category", Message: fmt.Sprintf("Unknown category %q", c.Category)}
	}
	if c.Weight < 0 || c.Weight > 100 {
		return store.Choice{}, &ValidationError{Field: "weight", Message: fmt.Sprintf("Weight must be between 0 and 100, got %d", c.Weight)}
	}
	if strings.ContainsAny(c.Value, ",\"\r\n") {
		return store.Choice{}, &ValidationError{Field: "value", Message: fmt.Sprintf("Value %q must not contain commas, quotes or line breaks", c.Value)}
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = e.now()
	}
	// The store keeps millisecond timestamps; the cache must match what a reload returns.
	c.Timestamp = c.Timestamp.UTC().Truncate(time.Millisecond)
	c.Question = normalizeNewlines(c.Question)
	c.Choice = normalizeNewlines(c.Choice)
	c.ID = 0

	stored := e.Store.Append(ctx, c)

	e.mu.Lock()
	e.choices = append(e.choices, stored)
	e.mu.Unlock()
	return stored, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Choose records the option with value for the category's question.
func (e *Engine) Choose(ctx context.Context, category store.Category, value string) (store.Choice, error) {
	q, opt, ok := LookupOption(category, value)
	if !ok {
		return store.Choice{}, &ValidationError{
			Field:   "value",
			Message: fmt.Sprintf("No choice %q for category %q", value, category),
		}
	}
	return e.Append(ctx, store.Choice{
		Category: category,
		Question: q.Text,
		Choice:   opt.Text,
		Value:    opt.Value,
		Weight:   opt.Weight,
	})
}

// Choices returns a copy of the cached choice log.
func (e *Engine) Choices() []store.Choice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.choices)
}

// Scores computes the current scores from the cached log.
func (e *Engine) Scores() Scores {
	return CalculateScores(e.Choices(), e.now())
}

// Preview estimates the effect of every option of category's question.
func (e *Engine) Preview(category store.Category) []Impact {
	current := e.Scores().Abstract[category]
	var impacts []Impact
	for _, q := range questions {
		if q.Category != category {
			continue
		}
		for _, o := range q.Options {
			impacts = append(impacts, PreviewImpact(category, current, o.Weight))
		}
	}
	return impacts
}

func (e *Engine) aggregate() float64 {
	return e.Scores().Aggregate
}

// SetLifeParameters validates the inputs, estimates life expectancy, stores
// the record and restarts the countdown. Nothing changes on a validation error.
func (e *Engine) SetLifeParameters(ctx context.Context, dob time.Time, conditions []store.Condition) (store.LifeParameters, error) {
	now := e.now()
	if err := ValidateLifeParameters(dob, conditions, now); err != nil {
		return store.LifeParameters{}, err
	}

	dob = dateOnly(dob)
	p := store.LifeParameters{
		DateOfBirth:  dob,
		Conditions:   slices.Clone(conditions),
		Expectancies: EstimateLifeExpectancy(store.AgeOn(dob, now), conditions),
		UpdatedAt:    now.UTC(),
	}
	e.Store.PutLifeParameters(ctx, p)

	e.mu.Lock()
	e.params = &p
	e.mu.Unlock()

	e.countdown.Start(p)
	return p, nil
}

// LifeParameters returns the current parameters and whether they are set.
func (e *Engine) LifeParameters() (store.LifeParameters, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.params == nil {
		return store.LifeParameters{}, false
	}
	return *e.params, true
}

// Countdown computes the countdown as of now. It reports false until life
// parameters are set.
func (e *Engine) Countdown() (CountdownState, bool) {
	p, ok := e.LifeParameters()
	if !ok {
		return CountdownState{}, false
	}
	return ProjectCountdown(e.now(), p.DateOfBirth, p.Expectancies, e.aggregate()), true
}

// CountdownRunning reports whether the countdown is ticking.
func (e *Engine) CountdownRunning() bool {
	return e.countdown.Running()
}

// StartCountdown starts the countdown if parameters exist.
func (e *Engine) StartCountdown() bool {
	p, ok := e.LifeParameters()
	if ok {
		e.countdown.Start(p)
	}
	return ok
}

// StopCountdown stops the countdown.
func (e *Engine) StopCountdown() {
	e.countdown.Stop()
}

// Reset clears the choice log and stops the countdown. Life parameters
// are kept.
func (e *Engine) Reset(ctx context.Context) {
	e.countdown.Stop()
	e.Store.ClearChoices(ctx)

	e.mu.Lock()
	e.choices = nil
	e.mu.Unlock()
}
