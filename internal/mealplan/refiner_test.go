package mealplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-dietician/internal/food"
)

func itemNames(items []food.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestRefine(t *testing.T) {
	abcd := CandidateSet{
		{Name: "A", Calories: 300, Protein: 10},
		{Name: "B", Calories: 250, Protein: 5},
		{Name: "C", Calories: 200, Protein: 3},
		{Name: "D", Calories: 150, Protein: 2},
	}

	t.Run("GreedyThenFiller", func(t *testing.T) {
		meal := Refine(abcd, 600)
		assert.Equal(t, []string{"A", "B", "D"}, itemNames(meal.Items))
		assert.Equal(t, 700.0, meal.Totals.Calories)
		assert.Equal(t, 17.0, meal.Totals.Protein)
		assert.Equal(t, 600.0, meal.Target)
	})

	t.Run("ExactFitSkipsFiller", func(t *testing.T) {
		meal := Refine(abcd, 550)
		assert.Equal(t, []string{"A", "B"}, itemNames(meal.Items))
		assert.Equal(t, 550.0, meal.Totals.Calories)
	})

	t.Run("InputOrderIrrelevantForDistinctCalories", func(t *testing.T) {
		shuffled := CandidateSet{abcd[3], abcd[1], abcd[0], abcd[2]}
		assert.Equal(t, Refine(abcd, 600).Items, Refine(shuffled, 600).Items)
	})

	t.Run("StableOnTies", func(t *testing.T) {
		meal := Refine(CandidateSet{{Name: "first", Calories: 100}, {Name: "second", Calories: 100}}, 100)
		assert.Equal(t, []string{"first"}, itemNames(meal.Items))
	})

	t.Run("FillerTieKeepsFirstVisited", func(t *testing.T) {
		meal := Refine(CandidateSet{{Name: "A", Calories: 200}, {Name: "P", Calories: 80}, {Name: "Q", Calories: 80}}, 250)
		assert.Equal(t, []string{"A", "P"}, itemNames(meal.Items))
		assert.Equal(t, 280.0, meal.Totals.Calories)
	})

	t.Run("EverythingFits", func(t *testing.T) {
		meal := Refine(CandidateSet{{Name: "Roti", Calories: 80}, {Name: "Curd", Calories: 100}}, 600)
		assert.Equal(t, []string{"Curd", "Roti"}, itemNames(meal.Items))
		assert.Equal(t, 180.0, meal.Totals.Calories)
	})

	t.Run("Empty", func(t *testing.T) {
		meal := Refine(nil, 600)
		assert.Empty(t, meal.Items)
		assert.Equal(t, Nutrients{}, meal.Totals)
	})

	t.Run("DeterministicAndPure", func(t *testing.T) {
		input := append(CandidateSet(nil), abcd...)
		first := Refine(input, 600)
		second := Refine(input, 600)
		assert.Equal(t, first, second)
		assert.Equal(t, abcd, input)
	})
}
