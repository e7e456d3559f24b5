package food

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("DieticianDataset", func(t *testing.T) {
		in := "Food Item,Calories (kcal),Protein (g),Carbohydrates(g),Fats (g),veg/nonveg\n" +
			"Poha,180,3.5,32,4,1\n" +
			"Chicken Biryani,520,25,60,18,0\n" +
			"Upma,,n/a,28,5,1\n"

		c, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 3, c.Len())

		assert.Equal(t, Item{Name: "Poha", Calories: 180, Protein: 3.5, Carbs: 32, Fat: 4, Vegetarian: true}, c.Item(0))
		assert.False(t, c.Item(1).Vegetarian)

		upma := c.Item(2)
		assert.Zero(t, upma.Calories)
		assert.Zero(t, upma.Protein)
		assert.Equal(t, 28.0, upma.Carbs)
	})

	t.Run("ColumnOrderAndSpacing", func(t *testing.T) {
		in := "veg/nonveg,Carbohydrates (g),Food Item,Calories (kcal)\n" +
			"veg,10,Apple,52\n"

		c, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, Item{Name: "Apple", Calories: 52, Carbs: 10, Vegetarian: true}, c.Item(0))
	})

	t.Run("SkipsBlankNamesAndClampsNegatives", func(t *testing.T) {
		in := "Food Item,Calories (kcal)\n,100\nRice,-5\n"

		c, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.Zero(t, c.Item(0).Calories)
	})

	t.Run("MissingRequiredColumn", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("Food Item,Protein (g)\nRice,2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "calorieskcal")
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}
