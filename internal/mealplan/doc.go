// Package mealplan assembles calorie-targeted meals from a food catalog.
//
// A daily allowance is split into per-meal targets (30/40/30 by default).
// For every meal two phases run over the filtered catalog:
//
//   - Sample: a random walk over a shuffled copy of the catalog. While the
//     total is above the tolerance band the last item is dropped; while it is
//     below, a uniformly drawn item is appended. The walk is capped by
//     Options.MaxAttempts and fails with ErrConstraintUnsatisfiable.
//   - Refine: a greedy pass over the candidates sorted by calories
//     (descending, stable), taking every item that still fits, followed by a
//     single best-fit filler when budget remains.
//
// This is a heuristic, not a knapsack solver. A refined meal is always a
// sub-multiset of its candidate set, so its total stays inside
// [target-tolerance, target+tolerance].
//
// The catalog is never mutated. All randomness comes from the *rand.Rand
// handed to Planner.Plan, so a fixed seed reproduces a plan exactly.
// A *rand.Rand is not safe for concurrent use: create one per request.
package mealplan
