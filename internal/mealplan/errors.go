package mealplan

import (
	"errors"

	"ai-dietician/internal/food"
)

// ErrEmptyCatalog is returned when the dietary filter leaves nothing to plan with.
var ErrEmptyCatalog = food.ErrEmptyCatalog

// ErrConstraintUnsatisfiable is returned when no candidate set inside the
// tolerance band could be found within the attempt budget.
var ErrConstraintUnsatisfiable = errors.New("mealplan: calorie target cannot be met")

// ErrInvalidInput is returned for non-finite or non-positive targets, a
// non-positive tolerance or attempt budget, and malformed meal shares.
var ErrInvalidInput = errors.New("mealplan: invalid input")
