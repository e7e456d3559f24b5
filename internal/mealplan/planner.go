package mealplan

import (
	"context"
	"fmt"
	"math/rand"

	"ai-dietician/internal/food"
)

// DietaryProfile describes who a plan is for.
type DietaryProfile struct {
	Preference    food.Preference
	Allergies     []string
	DailyCalories float64

	// MealTargets, when set, replaces the split of DailyCalories.
	MealTargets []MealTarget
}

// DailyPlan is the assembled result of Planner.Plan.
type DailyPlan struct {
	Meals  []MealPlan `json:"meals"`
	Totals Nutrients  `json:"totals"`
}

// Meal returns the meal called name, or nil.
func (p *DailyPlan) Meal(name string) *MealPlan {
	if p == nil {
		return nil
	}
	for i := range p.Meals {
		if p.Meals[i].Name == name {
			return &p.Meals[i]
		}
	}
	return nil
}

// Planner runs filter, sample and refine for every meal of a day.
type Planner struct {
	opts Options
}

// NewPlanner builds a Planner from DefaultOptions with opts applied.
func NewPlanner(opts ...Option) (*Planner, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Planner{opts: o}, nil
}

// Options returns a copy of the planner's settings.
func (p *Planner) Options() Options {
	o := p.opts
	o.Shares = append([]MealShare(nil), p.opts.Shares...)
	return o
}

// Plan filters catalog for profile and assembles one meal per target, in
// order. It fails as a whole: either every meal is built or the error of
// the first failing one is returned with a nil plan. catalog is not modified.
func (p *Planner) Plan(
	ctx context.Context,
	catalog *food.Catalog,
	profile DietaryProfile,
	rng *rand.Rand,
) (*DailyPlan, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	switch profile.Preference {
	case "", food.PreferenceAny, food.PreferenceVeg:
	default:
		return nil, fmt.Errorf("%w: unknown preference %q", ErrInvalidInput, profile.Preference)
	}

	targets := profile.MealTargets
	if len(targets) == 0 {
		var err error
		targets, err = SplitDaily(profile.DailyCalories, p.opts.Shares)
		if err != nil {
			return nil, err
		}
	} else {
		for _, t := range targets {
			if !finitePositive(t.Calories) {
				return nil, fmt.Errorf("%w: target of %s must be a positive number, got %v",
					ErrInvalidInput, t.Name, t.Calories)
			}
		}
	}

	filtered, err := food.Filter(catalog, profile.Preference, profile.Allergies)
	if err != nil {
		return nil, err
	}

	plan := &DailyPlan{Meals: make([]MealPlan, 0, len(targets))}
	for _, t := range targets {
		candidates, err := Sample(ctx, filtered, t.Calories, p.opts.Tolerance, p.opts.MaxAttempts, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to assemble %s: %w", t.Name, err)
		}
		meal := Refine(candidates, t.Calories)
		meal.Name = t.Name
		plan.Meals = append(plan.Meals, meal)
		plan.Totals.add(meal.Totals)
	}

	return plan, nil
}
