package engine

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/lazypower/lifeclock/internal/store"
)

func TestProjectTimeframesRepeatable(t *testing.T) {
	scores := CalculateScores(weighted(store.CategoryAction, 100, 100, 100), testNow).Abstract

	a := ProjectTimeframes(scores, rand.New(rand.NewPCG(7, 7)))
	b := ProjectTimeframes(scores, rand.New(rand.NewPCG(7, 7)))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gave different projections:\n%v\n%v", a, b)
	}
	if len(a) != len(store.Categories) {
		t.Errorf("categories = %d, want %d", len(a), len(store.Categories))
	}
}

func TestProjectTimeframesRanges(t *testing.T) {
	type bounds struct{ lo, hi float64 }
	tests := []struct {
		name    string
		current float64
		weeks   bounds
		years   bounds
	}{
		{"positive momentum", 70, bounds{72, 80}, bounds{85, 95}},
		{"negative momentum", 30, bounds{23, 29}, bounds{5, 20}},
		{"neutral", 50, bounds{47, 53}, bounds{32.5, 67.5}},
		{"slowed near the top", 90, bounds{91, 95}, bounds{95, 95}},
		{"slowed near the bottom", 10, bounds{6.5, 9.5}, bounds{5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, uint64(tt.current)))
			for i := 0; i < 200; i++ {
				got := ProjectTimeframes(CategoryScores{store.CategoryAgency: tt.current}, rng)[store.CategoryAgency]
				if w := got[HorizonWeeks]; w < tt.weeks.lo || w > tt.weeks.hi {
					t.Fatalf("weeks = %v, want in [%v,%v]", w, tt.weeks.lo, tt.weeks.hi)
				}
				if y := got[HorizonYears]; y < tt.years.lo || y > tt.years.hi {
					t.Fatalf("years = %v, want in [%v,%v]", y, tt.years.lo, tt.years.hi)
				}
				for h, v := range got {
					if v < 5 || v > 95 {
						t.Fatalf("%s = %v, out of [5,95]", h, v)
					}
				}
			}
		})
	}
}

func TestProjectTimeframesSkipsMissing(t *testing.T) {
	got := ProjectTimeframes(CategoryScores{store.CategoryAgency: 50}, rand.New(rand.NewPCG(1, 1)))
	if len(got) != 1 {
		t.Errorf("categories = %d, want 1", len(got))
	}
}
