package food

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Normalized header names of the dietician dataset.
const (
	colName       = "fooditem"
	colCalories   = "calorieskcal"
	colProtein    = "proteing"
	colCarbs      = "carbohydratesg"
	colFat        = "fatsg"
	colVegetarian = "vegnonveg"
)

// ReadCSV parses a food table. The header row is required and columns are
// matched by name, so column order and spacing ("Carbohydrates(g)" vs
// "Carbohydrates (g)") do not matter. Missing or unparseable numbers read as zero.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read catalog header: empty input")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	for _, required := range []string{colName, colCalories} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("catalog is missing required column %q", required)
		}
	}

	var items []Item
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		name := strings.TrimSpace(field(record, index, colName))
		if name == "" {
			continue
		}
		items = append(items, Item{
			Name:       name,
			Calories:   number(field(record, index, colCalories)),
			Protein:    number(field(record, index, colProtein)),
			Carbs:      number(field(record, index, colCarbs)),
			Fat:        number(field(record, index, colFat)),
			Vegetarian: vegFlag(field(record, index, colVegetarian)),
		})
	}

	return NewCatalog(items), nil
}

func normalizeHeader(h string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func field(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// number returns 0 for blanks, garbage, negative and non-finite values.
func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func vegFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "veg", "vegetarian", "true", "yes", "y":
		return true
	}
	return false
}
