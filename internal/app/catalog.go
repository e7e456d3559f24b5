package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ai-dietician/internal/food"
)

// ErrNoCatalog is returned when the database holds no foods yet.
var ErrNoCatalog = errors.New("catalog is empty, run import-catalog first")

// ImportCatalog parses a catalog CSV and replaces the stored catalog with it.
func ImportCatalog(ctx context.Context, repo *food.Repository, r io.Reader) (int, error) {
	catalog, err := food.ReadCSV(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	if catalog.Len() == 0 {
		return 0, fmt.Errorf("failed to read catalog: no food rows found")
	}

	if err := repo.ReplaceAll(ctx, catalog.Items()); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}
	return catalog.Len(), nil
}

// LoadCatalog reads the stored catalog into an immutable snapshot.
func LoadCatalog(ctx context.Context, repo *food.Repository) (*food.Catalog, error) {
	catalog, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if catalog.Len() == 0 {
		return nil, ErrNoCatalog
	}
	return catalog, nil
}
