package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

var (
	birth2000 = date(2000, 1, 1)
	flat73    = store.Expectancies{Optimistic: 73, Realistic: 73, Pessimistic: 73}
)

func TestChoiceImpactDays(t *testing.T) {
	tests := []struct {
		aggregate float64
		want      float64
	}{
		{50, 0},
		{100, 1095},
		{0, -1095},
		{75, 547.5},
	}
	for _, tt := range tests {
		if got := ChoiceImpactDays(tt.aggregate); got != tt.want {
			t.Errorf("ChoiceImpactDays(%v) = %v, want %v", tt.aggregate, got, tt.want)
		}
	}
}

func TestDeathDateFractionalYears(t *testing.T) {
	got := DeathDate(birth2000, 60.5, 0)
	want := date(2060, 1, 1).Add(182*day + 15*time.Hour)
	if !got.Equal(want) {
		t.Errorf("DeathDate = %v, want %v", got, want)
	}

	got = DeathDate(birth2000, 73, -10)
	want = date(2072, 12, 22)
	if !got.Equal(want) {
		t.Errorf("DeathDate with impact = %v, want %v", got, want)
	}
}

func TestProjectCountdownClocks(t *testing.T) {
	death := date(2073, 1, 1)
	now := death.Add(-(2*day + 3*time.Hour + 4*time.Minute + 5*time.Second + 600*time.Millisecond))

	s := ProjectCountdown(now, birth2000, flat73, 50)

	if want := (Clock{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}); s.Breakdown != want {
		t.Errorf("breakdown = %+v, want %+v", s.Breakdown, want)
	}
	if want := (Clock{Days: 2, Hours: 51, Minutes: 3064, Seconds: 183845}); s.Total != want {
		t.Errorf("total = %+v, want %+v", s.Total, want)
	}
	if s.Scenarios[ScenarioOptimistic] != s.Breakdown {
		t.Errorf("optimistic = %+v, want %+v with equal expectancies", s.Scenarios[ScenarioOptimistic], s.Breakdown)
	}
	if s.Expired() {
		t.Error("expired too early")
	}
}

func TestProjectCountdownScenarioImpact(t *testing.T) {
	now := date(2026, 10, 18)
	s := ProjectCountdown(now, birth2000, flat73, 100)

	if s.ImpactDays != 1095 {
		t.Fatalf("impact = %v, want 1095", s.ImpactDays)
	}
	half := 547*day + 12*time.Hour
	if got := s.Remaining[ScenarioOptimistic] - s.Remaining[ScenarioRealistic]; got != half {
		t.Errorf("optimistic - realistic = %v, want %v", got, half)
	}
	if got := s.Remaining[ScenarioRealistic] - s.Remaining[ScenarioPessimistic]; got != half {
		t.Errorf("realistic - pessimistic = %v, want %v", got, half)
	}
}

func TestProjectCountdownClampsAtZero(t *testing.T) {
	now := date(2080, 1, 1)
	s := ProjectCountdown(now, birth2000, flat73, 50)

	if !s.Expired() {
		t.Error("not expired")
	}
	for _, sc := range Scenarios {
		if s.Remaining[sc] != 0 {
			t.Errorf("%s remaining = %v, want 0", sc, s.Remaining[sc])
		}
		if s.Scenarios[sc] != (Clock{}) {
			t.Errorf("%s clock = %+v, want zero", sc, s.Scenarios[sc])
		}
	}
	if s.Total != (Clock{}) {
		t.Errorf("total = %+v, want zero", s.Total)
	}
}

func TestProjectCountdownNonIncreasing(t *testing.T) {
	exp := store.Expectancies{Optimistic: 83, Realistic: 73, Pessimistic: 70}
	now := date(2026, 10, 18)
	prev := ProjectCountdown(now, birth2000, exp, 62)
	for step := time.Millisecond; step < 200*365*day; step *= 3 {
		now = now.Add(step)
		cur := ProjectCountdown(now, birth2000, exp, 62)
		for _, sc := range Scenarios {
			if cur.Remaining[sc] > prev.Remaining[sc] {
				t.Fatalf("%s went up at %v: %v > %v", sc, now, cur.Remaining[sc], prev.Remaining[sc])
			}
			if cur.Remaining[sc] < 0 {
				t.Fatalf("%s negative at %v", sc, now)
			}
		}
		prev = cur
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func testParams() store.LifeParameters {
	return store.LifeParameters{
		DateOfBirth:  birth2000,
		Conditions:   []store.Condition{store.ConditionNone},
		Expectancies: flat73,
	}
}

func TestCountdownStartStop(t *testing.T) {
	var ticks atomic.Int64
	now := func() time.Time { return date(2026, 10, 18) }
	c := NewCountdown(2*time.Millisecond, now, func() float64 { return 50 }, func(CountdownState) {
		ticks.Add(1)
	})

	if c.Running() {
		t.Fatal("running before Start")
	}
	c.Start(testParams())
	if !c.Running() {
		t.Fatal("not running after Start")
	}
	// The first tick is delivered before Start returns.
	if ticks.Load() < 1 {
		t.Fatal("no tick on Start")
	}
	if c.State().At.IsZero() {
		t.Error("state not recorded")
	}
	waitFor(t, func() bool { return ticks.Load() >= 3 })

	c.Stop()
	if c.Running() {
		t.Error("running after Stop")
	}
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks after Stop: %d, want %d", got, after)
	}

	// Stopping twice is harmless.
	c.Stop()
}

func TestCountdownRestartLeavesOneTicker(t *testing.T) {
	var ticks atomic.Int64
	now := func() time.Time { return date(2026, 10, 18) }
	c := NewCountdown(time.Millisecond, now, func() float64 { return 50 }, func(CountdownState) {
		ticks.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Start(testParams())
		}()
	}
	wg.Wait()
	if !c.Running() {
		t.Fatal("not running after restarts")
	}

	// A single Stop must silence every ticker ever started.
	c.Stop()
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks after Stop: %d, want %d", got, after)
	}
}

func TestCountdownReadsAggregateEachTick(t *testing.T) {
	var agg atomic.Int64
	agg.Store(50)
	now := func() time.Time { return date(2026, 10, 18) }
	c := NewCountdown(time.Millisecond, now, func() float64 { return float64(agg.Load()) }, nil)
	defer c.Stop()

	c.Start(testParams())
	if got := c.State().ImpactDays; got != 0 {
		t.Fatalf("impact = %v, want 0", got)
	}
	agg.Store(100)
	waitFor(t, func() bool { return c.State().ImpactDays == 1095 })
}
