package food

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is a database-backed store for the food catalog.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ReplaceAll swaps the stored catalog for items in a single transaction.
func (r *Repository) ReplaceAll(ctx context.Context, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM food_items`); err != nil {
		return fmt.Errorf("failed to clear food items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO food_items (position, name, calories, protein, carbs, fat, vegetarian)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, i, it.Name, it.Calories, it.Protein, it.Carbs, it.Fat, it.Vegetarian); err != nil {
			return fmt.Errorf("failed to insert food item %q: %w", it.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// List returns all stored items in catalog order.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, calories, protein, carbs, fat, vegetarian
		FROM food_items
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Name, &it.Calories, &it.Protein, &it.Carbs, &it.Fat, &it.Vegetarian); err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate food items: %w", err)
	}
	return items, nil
}

// Count returns the number of stored items.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM food_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count food items: %w", err)
	}
	return n, nil
}

// Load reads the stored catalog into an immutable snapshot.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(items), nil
}
