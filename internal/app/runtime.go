package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ai-dietician/internal/advisor"
	"ai-dietician/internal/config"
	"ai-dietician/internal/database"
	"ai-dietician/internal/food"
	"ai-dietician/internal/llm"
	"ai-dietician/internal/mealplan"
	"ai-dietician/internal/metrics"
	"ai-dietician/internal/storage"
)

// Runtime owns the long-lived resources behind an App.
type Runtime struct {
	App     *App
	DB      *database.DB
	Metrics *metrics.Store

	closers []func() error
}

// NewRuntime opens the database, loads the catalog and planner settings and
// builds the App. The advisor is only wired when a Gemini key is configured.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt := &Runtime{DB: db, closers: []func() error{db.Close}}

	catalog, err := LoadCatalog(ctx, food.NewRepository(db.SQL))
	if err != nil {
		rt.Close()
		return nil, err
	}

	planning, err := config.LoadPlanning(cfg.PlannerConfig)
	if err != nil {
		rt.Close()
		return nil, err
	}
	planner, err := mealplan.NewPlanner(planning.Options()...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to configure planner: %w", err)
	}

	var adv Advisor
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, gemini.Close)

		var gen llm.TextGenerator = gemini
		if cfg.AdviceCacheDir != "" {
			store, err := storage.NewResponseStore(cfg.AdviceCacheDir)
			if err != nil {
				rt.Close()
				return nil, err
			}
			gen = llm.NewCachedTextGenerator(gemini, store, cfg.GeminiModel, logger)
		}
		adv = advisor.New(gen)
	}

	rt.Metrics = metrics.NewStore(db.SQL)
	rt.App = NewApp(catalog, planner, adv, rt.Metrics, logger)

	opts := planner.Options()
	logger.Info("Runtime ready",
		zap.Int("catalog_items", catalog.Len()),
		zap.Float64("tolerance", opts.Tolerance),
		zap.Int("max_attempts", opts.MaxAttempts),
		zap.Bool("advice", adv != nil))
	return rt, nil
}

// Close releases everything NewRuntime opened, newest first.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
	r.closers = nil
}
