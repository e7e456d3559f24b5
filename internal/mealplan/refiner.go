package mealplan

import (
	"cmp"
	"math"
	"slices"

	"ai-dietician/internal/food"
)

// Nutrients is an aggregate of calories and macronutrient grams.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (n *Nutrients) addItem(it food.Item) {
	n.Calories += it.Calories
	n.Protein += it.Protein
	n.Carbs += it.Carbs
	n.Fat += it.Fat
}

func (n *Nutrients) add(o Nutrients) {
	n.Calories += o.Calories
	n.Protein += o.Protein
	n.Carbs += o.Carbs
	n.Fat += o.Fat
}

// MealPlan is one refined meal.
type MealPlan struct {
	Name   string      `json:"name"`
	Target float64     `json:"target"`
	Items  []food.Item `json:"items"`
	Totals Nutrients   `json:"totals"`
}

// Refine picks the final items of a meal from candidates.
//
// Candidates are visited by calories, highest first (ties keep their
// input order), and every item that still fits in the remaining budget
// is taken. If budget is left afterwards, the unselected item whose calories
// are closest to it is added as a filler, even when that overshoots; the
// first one visited wins ties. The result is deterministic.
func Refine(candidates CandidateSet, target float64) MealPlan {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(candidates[b].Calories, candidates[a].Calories)
	})

	selected := make([]bool, len(candidates))
	picked := make([]food.Item, 0, len(candidates))
	remaining := target
	for _, i := range order {
		if kcal := candidates[i].Calories; kcal <= remaining {
			selected[i] = true
			picked = append(picked, candidates[i])
			remaining -= kcal
		}
	}

	if remaining > 0 {
		best, bestDiff := -1, math.Inf(1)
		for _, i := range order {
			if selected[i] {
				continue
			}
			if diff := math.Abs(candidates[i].Calories - remaining); diff < bestDiff {
				best, bestDiff = i, diff
			}
		}
		if best >= 0 {
			picked = append(picked, candidates[best])
		}
	}

	meal := MealPlan{Target: target, Items: picked}
	for _, it := range picked {
		meal.Totals.addItem(it)
	}
	return meal
}
