package engine

import (
	"math"
	"sync"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

// Scenario is one projection branch.
type Scenario string

const (
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioRealistic   Scenario = "realistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Scenarios lists the branches in presentation order.
var Scenarios = []Scenario{ScenarioOptimistic, ScenarioRealistic, ScenarioPessimistic}

const (
	// maxImpactDays is the swing applied at aggregate 0 or 100.
	maxImpactDays = 1095.0
	daysPerYear   = 365.25
	day           = 24 * time.Hour
)

// impactMultiplier scales the behavioral impact per scenario.
var impactMultiplier = map[Scenario]float64{
	ScenarioPessimistic: 0.5,
	ScenarioRealistic:   1.0,
	ScenarioOptimistic:  1.5,
}

// Clock is a duration split into display units.
type Clock struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// CountdownState is the time remaining as of At.
type CountdownState struct {
	At         time.Time                  `json:"at"`
	ImpactDays float64                    `json:"impactDays"`
	Remaining  map[Scenario]time.Duration `json:"-"`
	// Scenarios holds a days/hours/minutes/seconds clock per scenario.
	Scenarios map[Scenario]Clock `json:"scenarios"`
	// Total expresses the realistic remaining time in each unit separately.
	Total Clock `json:"total"`
	// Breakdown is the realistic clock.
	Breakdown Clock `json:"breakdown"`
}

// Expired reports whether the realistic countdown has reached zero.
func (s CountdownState) Expired() bool {
	return s.Remaining[ScenarioRealistic] == 0
}

// ChoiceImpactDays converts an aggregate score into days of lifespan,
// zero at the neutral score and ±1095 at the extremes.
func ChoiceImpactDays(aggregate float64) float64 {
	return (aggregate - neutralScore) / neutralScore * maxImpactDays
}

// DeathDate returns birth plus the expectancy in years, shifted by
// impactDays. Fractional years count as a share of 365.25 days.
func DeathDate(birth time.Time, years, impactDays float64) time.Time {
	whole, frac := math.Modf(years)
	days := frac*daysPerYear + impactDays
	return birth.AddDate(int(whole), 0, 0).Add(time.Duration(days * float64(day)))
}

// ProjectCountdown computes the time remaining in every scenario.
func ProjectCountdown(now, birth time.Time, exp store.Expectancies, aggregate float64) CountdownState {
	impact := ChoiceImpactDays(aggregate)
	years := map[Scenario]float64{
		ScenarioOptimistic:  exp.Optimistic,
		ScenarioRealistic:   exp.Realistic,
		ScenarioPessimistic: exp.Pessimistic,
	}

	state := CountdownState{
		At:         now,
		ImpactDays: impact,
		Remaining:  make(map[Scenario]time.Duration, len(Scenarios)),
		Scenarios:  make(map[Scenario]Clock, len(Scenarios)),
	}
	for _, sc := range Scenarios {
		death := DeathDate(birth, years[sc], impact*impactMultiplier[sc])
		remaining := max(death.Sub(now), 0)
		state.Remaining[sc] = remaining
		state.Scenarios[sc] = breakdownClock(remaining)
	}
	state.Total = totalClock(state.Remaining[ScenarioRealistic])
	state.Breakdown = state.Scenarios[ScenarioRealistic]
	return state
}

func breakdownClock(d time.Duration) Clock {
	ms := d.Milliseconds()
	return Clock{
		Days:    ms / day.Milliseconds(),
		Hours:   ms % day.Milliseconds() / time.Hour.Milliseconds(),
		Minutes: ms % time.Hour.Milliseconds() / time.Minute.Milliseconds(),
		Seconds: ms % time.Minute.Milliseconds() / time.Second.Milliseconds(),
	}
}

func totalClock(d time.Duration) Clock {
	ms := d.Milliseconds()
	return Clock{
		Days:    ms / day.Milliseconds(),
		Hours:   ms / time.Hour.Milliseconds(),
		Minutes: ms / time.Minute.Milliseconds(),
		Seconds: ms / time.Second.Milliseconds(),
	}
}

// Countdown recomputes a CountdownState on every tick while running.
// It is either stopped or running; reaching zero does not stop it.
type Countdown struct {
	interval  time.Duration
	now       func() time.Time
	aggregate func() float64
	onTick    func(CountdownState)

	// ctl serializes Start and Stop so only one ticker ever runs.
	ctl sync.Mutex

	mu      sync.Mutex
	state   CountdownState
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCountdown returns a stopped countdown. aggregate is consulted on every
// tick; onTick, if set, receives each new state and must not call Stop.
func NewCountdown(interval time.Duration, now func() time.Time, aggregate func() float64, onTick func(CountdownState)) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		interval:  interval,
		now:       now,
		aggregate: aggregate,
		onTick:    onTick,
	}
}

// Start begins ticking for p, replacing any countdown already running.
func (c *Countdown) Start(p store.LifeParameters) {
	c.ctl.Lock()
	defer c.ctl.Unlock()
	c.halt()

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	c.mu.Lock()
	c.running = true
	c.stopCh, c.doneCh = stopCh, doneCh
	c.mu.Unlock()

	c.tick(p)
	go c.run(p, stopCh, doneCh)
}

// Stop halts ticking. No tick is delivered after Stop returns.
func (c *Countdown) Stop() {
	c.ctl.Lock()
	defer c.ctl.Unlock()
	c.halt()
}

func (c *Countdown) halt() {
	c.mu.Lock()
	stopCh, doneCh := c.stopCh, c.doneCh
	c.stopCh, c.doneCh = nil, nil
	c.running = false
	c.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
}

// Running reports whether the countdown is ticking.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// State returns the most recent tick.
func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Countdown) run(p store.LifeParameters, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.tick(p)
		case <-stopCh:
			return
		}
	}
}

func (c *Countdown) tick(p store.LifeParameters) {
	state := ProjectCountdown(c.now(), p.DateOfBirth, p.Expectancies, c.aggregate())

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(state)
	}
}
