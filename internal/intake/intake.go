// Package intake estimates a daily calorie allowance from body measurements.
package intake

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidBody is returned by Assess and ParseGender for unusable input.
var ErrInvalidBody = errors.New("intake: invalid body measurements")

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts male/female and their first letters, case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	default:
		return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidBody, s)
	}
}

// Category is a BMI band.
type Category string

const (
	Underweight    Category = "Underweight"
	NormalWeight   Category = "Normal weight"
	Overweight     Category = "Overweight"
	Obese          Category = "Obese"
	ExtremelyObese Category = "Extremely obese"
)

// Body holds the measurements needed for an assessment.
type Body struct {
	Gender   Gender
	HeightCM float64
	WeightKG float64
	Age      int
}

// Assessment is the outcome of Assess. Calorie values are kcal per day.
type Assessment struct {
	BMI             float64  `json:"bmi"`
	Category        Category `json:"category"`
	InitialCalories float64  `json:"initial_calories"`
	Adjustment      float64  `json:"adjustment"`
	DailyCalories   float64  `json:"daily_calories"`
}

// Classify maps a BMI value to its band.
func Classify(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return NormalWeight
	case bmi < 30:
		return Overweight
	case bmi < 35:
		return Obese
	default:
		return ExtremelyObese
	}
}

// Assess computes BMI and a daily calorie target.
//
// The base is the Mifflin-St Jeor resting estimate. Underweight bodies get
// 18·m² + 650 on top of it, overweight and obese ones lose 25·m² and gain
// 200, everyone else gains a flat 350.
func Assess(b Body) (Assessment, error) {
	if err := b.validate(); err != nil {
		return Assessment{}, err
	}

	m := b.HeightCM / 100
	area := m * m
	bmi := b.WeightKG / area
	category := Classify(bmi)

	base := 10*b.WeightKG + 6.25*b.HeightCM - 5*float64(b.Age)
	if b.Gender == Male {
		base += 5
	} else {
		base -= 161
	}

	var adjustment, daily float64
	switch category {
	case Underweight:
		adjustment = 18 * area
		daily = base + adjustment + 650
	case Overweight, Obese:
		adjustment = 25 * area
		daily = base - adjustment + 200
	default:
		daily = base + 350
	}

	if daily <= 0 {
		return Assessment{}, fmt.Errorf("%w: estimated intake %.2f kcal is not positive", ErrInvalidBody, daily)
	}

	return Assessment{
		BMI:             round2(bmi),
		Category:        category,
		InitialCalories: round2(base),
		Adjustment:      round2(adjustment),
		DailyCalories:   round2(daily),
	}, nil
}

func (b Body) validate() error {
	if b.Gender != Male && b.Gender != Female {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidBody, b.Gender)
	}
	if !positive(b.HeightCM) {
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidBody, b.HeightCM)
	}
	if !positive(b.WeightKG) {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidBody, b.WeightKG)
	}
	if b.Age <= 0 || b.Age > 130 {
		return fmt.Errorf("%w: age out of range: %d", ErrInvalidBody, b.Age)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
