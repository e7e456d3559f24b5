package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ai-dietician/internal/config"
	"ai-dietician/internal/database"
	"ai-dietician/internal/food"
)

func TestNewRuntime(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &config.Config{DatabasePath: filepath.Join(dir, "dietician.db")}

	t.Run("NoCatalog", func(t *testing.T) {
		if _, err := NewRuntime(ctx, cfg, zap.NewNop()); !errors.Is(err, ErrNoCatalog) {
			t.Fatalf("Expected ErrNoCatalog, got %v", err)
		}
	})

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	var rows strings.Builder
	rows.WriteString("Food Item,Calories (kcal),Protein (g),Carbohydrates(g),Fats (g),veg/nonveg\n")
	for _, r := range []string{"Poha,180,4,32,4,1", "Masala Dosa,350,8,50,12,1", "Dal Tadka,150,9,20,4,1", "Roti,80,3,15,1,1", "Fish Curry,260,24,6,15,0"} {
		rows.WriteString(r + "\n")
	}
	if _, err := ImportCatalog(ctx, food.NewRepository(db.SQL), strings.NewReader(rows.String())); err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	db.Close()

	t.Run("Ready", func(t *testing.T) {
		rt, err := NewRuntime(ctx, cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("NewRuntime failed: %v", err)
		}
		defer rt.Close()

		if rt.App.CatalogSize() != 5 {
			t.Errorf("Expected 5 catalog items, got %d", rt.App.CatalogSize())
		}
		if rt.App.AdviceEnabled() {
			t.Error("Expected advice to be disabled without a Gemini key")
		}

		res, err := rt.App.GeneratePlan(ctx, PlanRequest{DailyCalories: 1800, Seed: 1, Source: "test"})
		if err != nil {
			t.Fatalf("GeneratePlan failed: %v", err)
		}
		summary, err := rt.Metrics.GetDailySummary(1)
		if err != nil {
			t.Fatalf("GetDailySummary failed: %v", err)
		}
		if len(summary) != 1 || summary[0].Runs != 1 {
			t.Errorf("Expected the run of %s to be stored, got %+v", res.RequestID, summary)
		}
	})

	t.Run("BadPlannerConfig", func(t *testing.T) {
		path := filepath.Join(dir, "planner.yaml")
		if err := os.WriteFile(path, []byte("meals:\n  - name: only\n    share: 0.5\n"), 0o644); err != nil {
			t.Fatalf("failed to write planner config: %v", err)
		}
		bad := *cfg
		bad.PlannerConfig = path
		if _, err := NewRuntime(ctx, &bad, zap.NewNop()); err == nil {
			t.Fatal("Expected an error for shares not adding up to 1")
		}
	})
}
