package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ai-dietician/internal/api"
	"ai-dietician/internal/app"
	"ai-dietician/internal/config"
	"ai-dietician/internal/database"
	"ai-dietician/internal/food"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/metrics"
	"ai-dietician/internal/storage"
)

var (
	// Global flags
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ai-dietician",
	Short: "Calorie-targeted daily meal plans from a food catalog",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load()

		var err error
		cfg, err = config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		zc := zap.NewProductionConfig()
		if verbose || cfg.LogLevel == "debug" {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if envErr != nil {
			logger.Debug("No .env file loaded", zap.Error(envErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog [csv-file]",
	Short: "Replace the stored food catalog with a CSV file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.CatalogCSVPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no CSV file given and CATALOG_CSV_PATH environment variable not set")
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()

		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		n, err := app.ImportCatalog(cmd.Context(), food.NewRepository(db.SQL), f)
		if err != nil {
			return err
		}
		logger.Info("Catalog imported", zap.String("file", path), zap.Int("items", n))
		fmt.Printf("Imported %d food items.\n", n)
		return nil
	},
}

var planFlags struct {
	weight     float64
	height     float64
	age        int
	gender     string
	daily      float64
	preference string
	allergies  string
	seed       int64
	advice     bool
	asJSON     bool
	timeout    time.Duration
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a daily meal plan",
	Long: `Generate a breakfast, lunch and dinner plan.

Either give body measurements (--weight, --height, --age, --gender) to derive
the daily target, or set it directly with --daily.`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), planFlags.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := app.PlanRequest{
		DailyCalories: planFlags.daily,
		Preference:    planFlags.preference,
		Allergies:     food.ParseAllergies(planFlags.allergies),
		Seed:          planFlags.seed,
		WithAdvice:    planFlags.advice,
		Source:        "cli",
	}
	if planFlags.daily == 0 {
		gender, err := intake.ParseGender(planFlags.gender)
		if err != nil {
			return err
		}
		req.Body = &intake.Body{
			Gender:   gender,
			HeightCM: planFlags.height,
			WeightKG: planFlags.weight,
			Age:      planFlags.age,
		}
	}

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if req.WithAdvice && !rt.App.AdviceEnabled() {
		logger.Warn("Dietician notes requested but GEMINI_API_KEY is not set")
	}

	res, err := rt.App.GeneratePlan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	if planFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	app.PrintPlan(os.Stdout, res)
	return nil
}

var cleanupDays int

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Delete metric records older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(cleanupDays)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

var pruneDays int

var cachePruneCmd = &cobra.Command{
	Use:   "cache-prune",
	Short: "Delete cached dietician notes older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AdviceCacheDir == "" {
			return fmt.Errorf("ADVICE_CACHE_DIR environment variable not set")
		}
		store, err := storage.NewResponseStore(cfg.AdviceCacheDir)
		if err != nil {
			return err
		}
		removed, err := store.RemoveOlderThan(time.Now().AddDate(0, 0, -pruneDays))
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached responses.\n", removed)
		return nil
	},
}

var tokenFlags struct {
	subject string
	ttl     time.Duration
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print a bearer token for the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := api.IssueToken(cfg.APISecret, tokenFlags.subject, tokenFlags.ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	f := planCmd.Flags()
	f.Float64Var(&planFlags.weight, "weight", 0, "Body weight in kg")
	f.Float64Var(&planFlags.height, "height", 0, "Height in cm")
	f.IntVar(&planFlags.age, "age", 0, "Age in years")
	f.StringVar(&planFlags.gender, "gender", "", "male or female")
	f.Float64Var(&planFlags.daily, "daily", 0, "Daily calorie target; skips the body assessment")
	f.StringVar(&planFlags.preference, "preference", "any", "veg or any")
	f.StringVar(&planFlags.allergies, "allergies", "", "Comma separated terms to exclude")
	f.Int64Var(&planFlags.seed, "seed", 0, "Random seed; 0 picks one")
	f.BoolVar(&planFlags.advice, "advice", false, "Ask Gemini for dietician notes")
	f.BoolVar(&planFlags.asJSON, "json", false, "Print the plan as JSON")
	f.DurationVar(&planFlags.timeout, "timeout", time.Minute, "Give up after this long")
	planCmd.MarkFlagsMutuallyExclusive("daily", "weight")

	cachePruneCmd.Flags().IntVar(&pruneDays, "days", 90, "Keep responses from the last N days")

	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")

	issueTokenCmd.Flags().StringVar(&tokenFlags.subject, "subject", "", "Who the token is for (required)")
	issueTokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	issueTokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(importCatalogCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(metricsCleanupCmd)
	rootCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(issueTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
