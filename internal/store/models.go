package store

import (
	"context"
	"time"
)

// Category is one of the eight behavioral dimensions a choice belongs to.
type Category string

const (
	CategoryMindfulness  Category = "mindfulness"
	CategoryIntention    Category = "intention"
	CategoryAction       Category = "action"
	CategoryAppreciation Category = "appreciation"
	CategoryPresence     Category = "presence"
	CategorySelfBelief   Category = "selfBelief"
	CategoryAgency       Category = "agency"
	CategoryValidation   Category = "validation"
)

// Categories lists every category in presentation order.
var Categories = []Category{
	CategoryMindfulness,
	CategoryIntention,
	CategoryAction,
	CategoryAppreciation,
	CategoryPresence,
	CategorySelfBelief,
	CategoryAgency,
	CategoryValidation,
}

// Valid reports whether c is one of the eight known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Condition is a health condition token used by the life expectancy estimate.
type Condition string

const (
	ConditionNone         Condition = "none"
	ConditionDiabetes     Condition = "diabetes"
	ConditionHeartDisease Condition = "heart_disease"
	ConditionCancer       Condition = "cancer"
	ConditionHypertension Condition = "hypertension"
	ConditionObesity      Condition = "obesity"
	ConditionSmoking      Condition = "smoking"
	ConditionMentalHealth Condition = "mental_health"
	ConditionOther        Condition = "other"
)

// Choice is a single recorded decision. Choices are immutable once stored.
type Choice struct {
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Question  string    `json:"question"`
	Choice    string    `json:"choice"`
	Value     string    `json:"value"`
	Weight    int       `json:"weight"`
}

// Expectancies holds the three life expectancy scenarios, in years.
type Expectancies struct {
	Optimistic  float64 `json:"optimistic"`
	Realistic   float64 `json:"realistic"`
	Pessimistic float64 `json:"pessimistic"`
}

// LifeParameters is the singleton record describing the user.
type LifeParameters struct {
	DateOfBirth  time.Time    `json:"dob"`
	Conditions   []Condition  `json:"conditions"`
	Expectancies Expectancies `json:"lifeExpectancies"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Backend is a store implementation that may fail. Callers outside this
// package use Fallback, which absorbs those failures.
type Backend interface {
	AppendChoice(ctx context.Context, c Choice) (Choice, error)
	LoadChoices(ctx context.Context) ([]Choice, error)
	ClearChoices(ctx context.Context) error
	PutLifeParameters(ctx context.Context, p LifeParameters) error
	// GetLifeParameters returns nil, nil when no record exists.
	GetLifeParameters(ctx context.Context) (*LifeParameters, error)
}

// AgeOn returns the age in whole years of someone born on dob, as of now.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
