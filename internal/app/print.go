package app

import (
	"fmt"
	"io"
	"strings"
)

// PrintPlan writes a plain-text rendering of res to w.
func PrintPlan(w io.Writer, res *PlanResult) {
	fmt.Fprintf(w, "Request %s (seed %d)\n", res.RequestID, res.Seed)
	if a := res.Assessment; a != nil {
		fmt.Fprintf(w, "BMI %.2f (%s), daily target %.0f kcal\n", a.BMI, a.Category, a.DailyCalories)
	}

	fmt.Fprintln(w, "\n=== DAILY MEAL PLAN ===")
	for _, meal := range res.Plan.Meals {
		fmt.Fprintf(w, "\n%s: %.0f kcal (target %.0f)\n", strings.ToUpper(meal.Name), meal.Totals.Calories, meal.Target)
		for _, it := range meal.Items {
			fmt.Fprintf(w, "  - %-30s %6.0f kcal  P %5.1fg  C %5.1fg  F %5.1fg\n",
				it.Name, it.Calories, it.Protein, it.Carbs, it.Fat)
		}
	}

	t := res.Plan.Totals
	fmt.Fprintf(w, "\nTOTAL: %.0f kcal, protein %.1fg, carbs %.1fg, fat %.1fg\n", t.Calories, t.Protein, t.Carbs, t.Fat)

	if res.Advice != nil {
		fmt.Fprintln(w, "\n=== DIETICIAN NOTES ===")
		fmt.Fprintln(w, res.Advice.Markdown)
	}
}
