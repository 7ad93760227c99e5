package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

const (
	// scoreWindow bounds which choices count toward the current scores.
	scoreWindow = 30 * 24 * time.Hour

	neutralScore = 50.0
	trendFactor  = 0.2
	recentCount  = 3
)

// CategoryScores maps every category to a score in [0,100].
type CategoryScores map[store.Category]float64

// Scores is the full derived view of a choice log.
type Scores struct {
	Abstract  CategoryScores     `json:"abstract"`
	Aggregate float64            `json:"aggregate"`
	Concrete  ConcreteProjection `json:"concrete"`
}

// CalculateScores scores the choices made in the 30 days before now and
// projects the aggregate onto the concrete domains.
func CalculateScores(choices []store.Choice, now time.Time) Scores {
	byCategory := make(map[store.Category][]store.Choice, len(store.Categories))
	cutoff := now.Add(-scoreWindow)
	for _, c := range choices {
		if c.Timestamp.After(cutoff) {
			byCategory[c.Category] = append(byCategory[c.Category], c)
		}
	}

	abstract := make(CategoryScores, len(store.Categories))
	for _, cat := range store.Categories {
		abstract[cat] = categoryScore(byCategory[cat])
	}

	aggregate := abstract.Aggregate()
	return Scores{
		Abstract:  abstract,
		Aggregate: aggregate,
		Concrete:  ProjectOutcomes(aggregate),
	}
}

// Aggregate returns the mean score, or the neutral score when empty.
func (s CategoryScores) Aggregate() float64 {
	if len(s) == 0 {
		return neutralScore
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func categoryScore(choices []store.Choice) float64 {
	if len(choices) == 0 {
		return neutralScore
	}

	slices.SortStableFunc(choices, func(a, b store.Choice) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	avg := meanWeight(choices)
	return clamp(avg+trend(choices), 0, 100)
}

// trend compares the last three choices against everything before them.
func trend(choices []store.Choice) float64 {
	if len(choices) < 2 {
		return 0
	}

	split := max(len(choices)-recentCount, 0)
	recentAvg := meanWeight(choices[split:])
	olderAvg := recentAvg
	if split > 0 {
		olderAvg = meanWeight(choices[:split])
	}
	return (recentAvg - olderAvg) * trendFactor
}

func meanWeight(choices []store.Choice) float64 {
	var sum int
	for _, c := range choices {
		sum += c.Weight
	}
	return float64(sum) / float64(len(choices))
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
