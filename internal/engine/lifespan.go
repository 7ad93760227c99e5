package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/lazypower/lifeclock/internal/store"
)

const (
	baseExpectancy = 73.0
	minAge         = 1
	maxAge         = 120
)

// conditionImpact is the change in expected lifespan, in years, per condition.
var conditionImpact = map[store.Condition]float64{
	store.ConditionNone:         0,
	store.ConditionDiabetes:     -6,
	store.ConditionHeartDisease: -8,
	store.ConditionCancer:       -10,
	store.ConditionHypertension: -4,
	store.ConditionObesity:      -5,
	store.ConditionSmoking:      -10,
	store.ConditionMentalHealth: -7,
	store.ConditionOther:        -5,
}

// Conditions lists the accepted condition tokens.
var Conditions = []store.Condition{
	store.ConditionNone,
	store.ConditionDiabetes,
	store.ConditionHeartDisease,
	store.ConditionCancer,
	store.ConditionHypertension,
	store.ConditionObesity,
	store.ConditionSmoking,
	store.ConditionMentalHealth,
	store.ConditionOther,
}

// EstimateLifeExpectancy derives the three scenario expectancies, in years,
// from the current age and health conditions. This is a heuristic, not a
// medical model.
func EstimateLifeExpectancy(age int, conditions []store.Condition) store.Expectancies {
	healthy := len(conditions) == 1 && conditions[0] == store.ConditionNone

	var impact float64
	if !healthy {
		for _, c := range conditions {
			impact += conditionImpact[c]
		}
		if n := len(conditions); n > 1 {
			impact *= 1 - float64(n-1)*0.1
		}
	}

	floor := float64(age + 1)
	realistic := math.Max(floor, baseExpectancy+impact)

	optimisticGain, pessimisticLoss := 7.0, 6.0
	if healthy {
		optimisticGain, pessimisticLoss = 10, 3
	}

	return store.Expectancies{
		Optimistic:  realistic + optimisticGain,
		Realistic:   realistic,
		Pessimistic: math.Max(floor, realistic-pessimisticLoss),
	}
}

// ValidationError describes life parameters that cannot be accepted.
// Message is suitable for showing to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateLifeParameters checks a date of birth and condition set as of now.
func ValidateLifeParameters(dob time.Time, conditions []store.Condition, now time.Time) error {
	if dob.IsZero() {
		return &ValidationError{Field: "dob", Message: "Please select your date of birth"}
	}
	if len(conditions) == 0 {
		return &ValidationError{
			Field:   "conditions",
			Message: `Please select at least one health condition (including "None/Healthy" if applicable)`,
		}
	}

	seen := make(map[store.Condition]bool, len(conditions))
	for _, c := range conditions {
		if _, ok := conditionImpact[c]; !ok {
			return &ValidationError{Field: "conditions", Message: fmt.Sprintf("Unknown health condition %q", c)}
		}
		if seen[c] {
			return &ValidationError{Field: "conditions", Message: fmt.Sprintf("Health condition %q is listed more than once", c)}
		}
		seen[c] = true
	}
	if seen[store.ConditionNone] && len(conditions) > 1 {
		return &ValidationError{Field: "conditions", Message: `"None/Healthy" cannot be combined with other conditions`}
	}

	if dateOnly(dob).After(dateOnly(now)) {
		return &ValidationError{Field: "dob", Message: "Date of birth cannot be in the future"}
	}
	if age := store.AgeOn(dob, now); age < minAge || age > maxAge {
		return &ValidationError{Field: "dob", Message: fmt.Sprintf("Age must be between %d and %d years", minAge, maxAge)}
	}
	return nil
}

// ParseConditions converts raw tokens into conditions without validating them.
func ParseConditions(raw []string) []store.Condition {
	conditions := make([]store.Condition, 0, len(raw))
	for _, r := range raw {
		conditions = append(conditions, store.Condition(r))
	}
	return conditions
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
