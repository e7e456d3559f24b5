package mealplan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDaily(t *testing.T) {
	t.Run("DefaultShares", func(t *testing.T) {
		targets, err := SplitDaily(2000, DefaultShares())
		require.NoError(t, err)
		assert.Equal(t, []MealTarget{
			{Name: MealBreakfast, Calories: 600},
			{Name: MealLunch, Calories: 800},
			{Name: MealDinner, Calories: 600},
		}, targets)
	})

	t.Run("LastMealTakesRemainder", func(t *testing.T) {
		targets, err := SplitDaily(2001, DefaultShares())
		require.NoError(t, err)
		assert.Equal(t, 600.0, targets[0].Calories)
		assert.Equal(t, 800.0, targets[1].Calories)
		assert.Equal(t, 601.0, targets[2].Calories)
	})

	t.Run("HalvesRoundUp", func(t *testing.T) {
		targets, err := SplitDaily(1995, DefaultShares())
		require.NoError(t, err)
		assert.Equal(t, 599.0, targets[0].Calories)
		assert.Equal(t, 798.0, targets[1].Calories)
		assert.Equal(t, 598.0, targets[2].Calories)
	})

	t.Run("TargetsAddUp", func(t *testing.T) {
		for daily := 1200.0; daily <= 3200; daily += 7.3 {
			targets, err := SplitDaily(daily, DefaultShares())
			require.NoError(t, err)
			var sum float64
			for _, tg := range targets {
				sum += tg.Calories
			}
			assert.Equal(t, roundHalfUp(daily), sum, "daily %v", daily)
		}
	})

	t.Run("CustomShares", func(t *testing.T) {
		targets, err := SplitDaily(1800, []MealShare{{Name: "brunch", Weight: 0.5}, {Name: "supper", Weight: 0.5}})
		require.NoError(t, err)
		assert.Equal(t, []MealTarget{{Name: "brunch", Calories: 900}, {Name: "supper", Calories: 900}}, targets)
	})

	t.Run("InvalidDaily", func(t *testing.T) {
		for _, daily := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := SplitDaily(daily, DefaultShares())
			assert.ErrorIs(t, err, ErrInvalidInput, "daily %v", daily)
		}
	})

	t.Run("TooSmallToSplit", func(t *testing.T) {
		_, err := SplitDaily(1, DefaultShares())
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("InvalidShares", func(t *testing.T) {
		cases := map[string][]MealShare{
			"empty":     nil,
			"sum":       {{Name: "a", Weight: 0.5}, {Name: "b", Weight: 0.4}},
			"duplicate": {{Name: "a", Weight: 0.5}, {Name: "a", Weight: 0.5}},
			"unnamed":   {{Weight: 1}},
			"negative":  {{Name: "a", Weight: 1.5}, {Name: "b", Weight: -0.5}},
		}
		for name, shares := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := SplitDaily(2000, shares)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 599.0, roundHalfUp(598.5))
	assert.Equal(t, 2.0, roundHalfUp(2.4))
	assert.Equal(t, 3.0, roundHalfUp(2.5))
	assert.Equal(t, 599.0, roundHalfUp(1995*0.3))
}
