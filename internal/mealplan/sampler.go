package mealplan

import (
	"context"
	"fmt"
	"math/rand"

	"ai-dietician/internal/food"
)

// ctxCheckInterval is how many sampling steps run between context checks.
const ctxCheckInterval = 64

// CandidateSet is the private working set of one meal assembly.
// Items may repeat because additions are drawn with replacement.
type CandidateSet []food.Item

// Calories returns the summed calories of the set.
func (s CandidateSet) Calories() float64 {
	var total float64
	for _, it := range s {
		total += it.Calories
	}
	return total
}

// Sample builds a candidate set whose calories lie in
// [target-tolerance, target+tolerance].
//
// It starts from a uniform permutation of the whole catalog, then repeatedly
// drops the last item while over the band or appends a uniformly drawn item
// (with replacement) while under it. The walk fails with
// ErrConstraintUnsatisfiable when the catalog is empty, when a single
// remaining item is still over the band, or after maxAttempts steps.
// Cancelling ctx stops the walk.
func Sample(
	ctx context.Context,
	catalog *food.Catalog,
	target float64,
	tolerance float64,
	maxAttempts int,
	rng *rand.Rand,
) (CandidateSet, error) {
	if !finitePositive(target) {
		return nil, fmt.Errorf("%w: meal target must be a positive number, got %v", ErrInvalidInput, target)
	}
	if !finitePositive(tolerance) {
		return nil, fmt.Errorf("%w: tolerance must be a positive number, got %v", ErrInvalidInput, tolerance)
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidInput, maxAttempts)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}

	n := catalog.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: no items to sample from", ErrConstraintUnsatisfiable)
	}

	set := make(CandidateSet, 0, n)
	for _, i := range rng.Perm(n) {
		set = append(set, catalog.Item(i))
	}

	lower, upper := target-tolerance, target+tolerance
	total := set.Calories()
	for attempt := 0; total < lower || total > upper; attempt++ {
		if attempt >= maxAttempts {
			return nil, fmt.Errorf("%w: no combination within %.0f±%.0f kcal after %d attempts",
				ErrConstraintUnsatisfiable, target, tolerance, maxAttempts)
		}
		if attempt%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("sampling interrupted: %w", err)
			}
		}

		if total > upper {
			if len(set) == 1 {
				return nil, fmt.Errorf("%w: %q alone exceeds %.0f kcal",
					ErrConstraintUnsatisfiable, set[0].Name, upper)
			}
			set = set[:len(set)-1]
		} else {
			set = append(set, catalog.Item(rng.Intn(n)))
		}
		total = set.Calories()
	}

	return set, nil
}
