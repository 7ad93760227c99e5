package engine

import (
	"math/rand/v2"

	"github.com/lazypower/lifeclock/internal/store"
)

// Horizon is a long-range projection window.
type Horizon string

const (
	HorizonWeeks  Horizon = "weeks"
	HorizonMonths Horizon = "months"
	HorizonYears  Horizon = "years"
)

// Horizons lists the projection windows from nearest to farthest.
var Horizons = []Horizon{HorizonWeeks, HorizonMonths, HorizonYears}

// changeRange is a uniform range of score change, in points.
type changeRange struct{ lo, hi float64 }

// horizonChanges gives the change ranges for positive, negative and neutral
// momentum at each horizon.
var horizonChanges = map[Horizon][3]changeRange{
	HorizonWeeks:  {{2, 10}, {-7, -1}, {-3, 3}},
	HorizonMonths: {{8, 28}, {-19, -4}, {-8, 8}},
	HorizonYears:  {{15, 55}, {-45, -10}, {-17.5, 17.5}},
}

// TimeframeScores projects one category score over every horizon.
type TimeframeScores map[Horizon]float64

// ProjectTimeframes narrates where each category score could drift. The
// result is random; rng must be seeded by the caller so output is repeatable.
func ProjectTimeframes(scores CategoryScores, rng *rand.Rand) map[store.Category]TimeframeScores {
	out := make(map[store.Category]TimeframeScores, len(scores))
	// Iterate in fixed order so a given seed always yields the same values.
	for _, cat := range store.Categories {
		current, ok := scores[cat]
		if !ok {
			continue
		}
		projected := make(TimeframeScores, len(Horizons))
		for _, h := range Horizons {
			projected[h] = timeframeScore(current, h, rng)
		}
		out[cat] = projected
	}
	return out
}

func timeframeScore(current float64, h Horizon, rng *rand.Rand) float64 {
	ranges := horizonChanges[h]
	r := ranges[2]
	switch {
	case current > 60:
		r = ranges[0]
	case current < 40:
		r = ranges[1]
	}
	change := r.lo + rng.Float64()*(r.hi-r.lo)

	// Harder to climb when already high, harder to sink when already low.
	if (current > 80 && change > 0) || (current < 20 && change < 0) {
		change *= 0.5
	}
	return clamp(current+change, 5, 95)
}
