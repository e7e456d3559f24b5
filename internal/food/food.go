package food

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCatalog is returned when filtering leaves no items to plan with.
var ErrEmptyCatalog = errors.New("food: filtered catalog is empty")

// ErrInvalidPreference is returned by ParsePreference for unknown values.
var ErrInvalidPreference = errors.New("food: invalid dietary preference")

// Preference is a dietary preference understood by Filter.
type Preference string

const (
	PreferenceAny Preference = "any"
	PreferenceVeg Preference = "veg"
)

// Item is a single food record. Values are copied, never mutated.
type Item struct {
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Vegetarian bool    `json:"vegetarian"`
}

// Catalog is an ordered, read-only snapshot of food items.
// It is safe for concurrent use because nothing mutates it after construction.
type Catalog struct {
	items []Item
}

// NewCatalog copies items into a new Catalog.
func NewCatalog(items []Item) *Catalog {
	return &Catalog{items: append([]Item(nil), items...)}
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Item returns the i-th item.
func (c *Catalog) Item(i int) Item {
	return c.items[i]
}

// Items returns a copy of the catalog contents.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	return append([]Item(nil), c.items...)
}

// ParsePreference maps user input to a Preference. Empty input means PreferenceAny.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all", "nonveg", "non-veg":
		return PreferenceAny, nil
	case "veg", "vegetarian":
		return PreferenceVeg, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
	}
}

// ParseAllergies splits a comma separated list of exclusion terms.
// Blank entries are dropped.
func ParseAllergies(s string) []string {
	var terms []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Filter returns the items of catalog matching the preference that do not
// contain any of the allergy terms in their name (case-insensitive).
// Catalog order is preserved. ErrEmptyCatalog is returned when nothing is left.
func Filter(catalog *Catalog, pref Preference, allergies []string) (*Catalog, error) {
	terms := make([]string, 0, len(allergies))
	for _, a := range allergies {
		if t := strings.ToLower(strings.TrimSpace(a)); t != "" {
			terms = append(terms, t)
		}
	}

	kept := make([]Item, 0, catalog.Len())
	for _, item := range catalog.Items() {
		if pref == PreferenceVeg && !item.Vegetarian {
			continue
		}
		if containsAny(strings.ToLower(item.Name), terms) {
			continue
		}
		kept = append(kept, item)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d of %d items excluded", ErrEmptyCatalog, catalog.Len(), catalog.Len())
	}
	return &Catalog{items: kept}, nil
}

func containsAny(name string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}
