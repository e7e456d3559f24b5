package mealplan

import (
	"fmt"
	"math"
)

// MealTarget is the calorie goal of one meal.
type MealTarget struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// SplitDaily divides a daily allowance by shares.
//
// Rounding: every meal except the last is rounded half-up to a whole kcal;
// the last meal gets the rounded daily total minus the others, so targets
// always add up to round-half-up(daily). 2000 kcal gives 600/800/600.
func SplitDaily(daily float64, shares []MealShare) ([]MealTarget, error) {
	if !finitePositive(daily) {
		return nil, fmt.Errorf("%w: daily calories must be a positive number, got %v", ErrInvalidInput, daily)
	}
	if err := validateShares(shares); err != nil {
		return nil, err
	}

	total := roundHalfUp(daily)
	targets := make([]MealTarget, 0, len(shares))
	var assigned float64
	for i, s := range shares {
		kcal := total - assigned
		if i < len(shares)-1 {
			kcal = roundHalfUp(daily * s.Weight)
			assigned += kcal
		}
		if kcal <= 0 {
			return nil, fmt.Errorf("%w: %v kcal leaves nothing for %s", ErrInvalidInput, daily, s.Name)
		}
		targets = append(targets, MealTarget{Name: s.Name, Calories: kcal})
	}
	return targets, nil
}

// roundHalfUp rounds to the nearest whole kcal with halves going up.
// Products like 1995*0.3 land a hair under .5 in binary, hence the nudge.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5 + 1e-9)
}
