package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ai-dietician/internal/mealplan"
)

// Planning holds planner overrides read from a YAML file:
//
//	tolerance: 150
//	max_attempts: 20000
//	meals:
//	  - name: breakfast
//	    share: 0.25
//	  - name: lunch
//	    share: 0.45
//	  - name: dinner
//	    share: 0.30
//
// Zero values keep the planner defaults.
type Planning struct {
	Tolerance   float64              `yaml:"tolerance"`
	MaxAttempts int                  `yaml:"max_attempts"`
	Meals       []mealplan.MealShare `yaml:"meals"`
}

// LoadPlanning reads planner settings from path. An empty path yields no overrides.
func LoadPlanning(path string) (*Planning, error) {
	if path == "" {
		return &Planning{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read planner config: %w", err)
	}

	var p Planning
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse planner config: %w", err)
	}
	return &p, nil
}

// Options converts the overrides into planner options.
func (p *Planning) Options() []mealplan.Option {
	if p == nil {
		return nil
	}

	var opts []mealplan.Option
	if p.Tolerance != 0 {
		opts = append(opts, mealplan.WithTolerance(p.Tolerance))
	}
	if p.MaxAttempts != 0 {
		opts = append(opts, mealplan.WithMaxAttempts(p.MaxAttempts))
	}
	if len(p.Meals) > 0 {
		opts = append(opts, mealplan.WithShares(p.Meals))
	}
	return opts
}
