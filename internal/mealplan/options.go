package mealplan

import (
	"fmt"
	"math"
)

// Meal names used by the default split.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

const (
	// DefaultTolerance is the accepted slack around a meal target, in kcal.
	DefaultTolerance = 200.0

	// DefaultMaxAttempts caps the sampling walk for a single meal.
	DefaultMaxAttempts = 10000

	shareSumEpsilon = 1e-9
)

// MealShare is the fraction of the daily allowance given to one meal.
type MealShare struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"share" json:"share"`
}

// DefaultShares returns the 30/40/30 breakfast/lunch/dinner split.
func DefaultShares() []MealShare {
	return []MealShare{
		{Name: MealBreakfast, Weight: 0.3},
		{Name: MealLunch, Weight: 0.4},
		{Name: MealDinner, Weight: 0.3},
	}
}

// Options configures a Planner. Use DefaultOptions to start from the
// reference behavior.
type Options struct {
	Tolerance   float64
	MaxAttempts int
	Shares      []MealShare
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns tolerance 200 kcal, 10000 attempts and the 30/40/30 split.
func DefaultOptions() Options {
	return Options{
		Tolerance:   DefaultTolerance,
		MaxAttempts: DefaultMaxAttempts,
		Shares:      DefaultShares(),
	}
}

// WithTolerance sets the tolerance band half-width in kcal.
func WithTolerance(kcal float64) Option {
	return func(o *Options) { o.Tolerance = kcal }
}

// WithMaxAttempts sets the per-meal sampling budget.
func WithMaxAttempts(n int) Option {
	return func(o *Options) { o.MaxAttempts = n }
}

// WithShares replaces the meal split.
func WithShares(shares []MealShare) Option {
	return func(o *Options) { o.Shares = append([]MealShare(nil), shares...) }
}

// Validate reports ErrInvalidInput for unusable options.
func (o Options) Validate() error {
	if !finitePositive(o.Tolerance) {
		return fmt.Errorf("%w: tolerance must be a positive number, got %v", ErrInvalidInput, o.Tolerance)
	}
	if o.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidInput, o.MaxAttempts)
	}
	return validateShares(o.Shares)
}

func validateShares(shares []MealShare) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: at least one meal share is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(shares))
	var sum float64
	for _, s := range shares {
		if s.Name == "" {
			return fmt.Errorf("%w: meal share without a name", ErrInvalidInput)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate meal %q", ErrInvalidInput, s.Name)
		}
		seen[s.Name] = struct{}{}

		if !finitePositive(s.Weight) {
			return fmt.Errorf("%w: share of %q must be positive, got %v", ErrInvalidInput, s.Name, s.Weight)
		}
		sum += s.Weight
	}

	if math.Abs(sum-1) > shareSumEpsilon {
		return fmt.Errorf("%w: meal shares must add up to 1, got %v", ErrInvalidInput, sum)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
