package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-dietician/internal/advisor"
	"ai-dietician/internal/food"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/mealplan"
	"ai-dietician/internal/metrics"
	"ai-dietician/internal/shared"
)

// Advisor produces dietician notes for a finished plan.
type Advisor interface {
	Advise(ctx context.Context, req advisor.Request) (advisor.Advice, error)
}

// MetricsRecorder persists plan outcomes and model usage.
type MetricsRecorder interface {
	Record(r metrics.PlanRun) error
	RecordMeta(meta shared.AgentMeta) error
}

// App holds the application's dependencies.
type App struct {
	catalog *food.Catalog
	planner *mealplan.Planner
	advisor Advisor
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewApp creates and initializes a new App instance. advisor and recorder may be nil.
func NewApp(
	catalog *food.Catalog,
	planner *mealplan.Planner,
	advisor Advisor,
	recorder MetricsRecorder,
	logger *zap.Logger,
) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		catalog: catalog,
		planner: planner,
		advisor: advisor,
		metrics: recorder,
		logger:  logger,
	}
}

// CatalogSize returns the number of foods plans are drawn from.
func (a *App) CatalogSize() int {
	return a.catalog.Len()
}

// AdviceEnabled reports whether dietician notes can be generated.
func (a *App) AdviceEnabled() bool {
	return a.advisor != nil
}

// PlanRequest describes a plan to generate. When Body is set the daily
// target comes from intake.Assess, otherwise DailyCalories is used.
type PlanRequest struct {
	Body          *intake.Body
	DailyCalories float64
	Preference    string
	Allergies     []string
	Seed          int64
	WithAdvice    bool
	Source        string
}

// PlanResult is a generated plan with everything needed to display it.
type PlanResult struct {
	RequestID  string              `json:"request_id"`
	Seed       int64               `json:"seed"`
	Preference food.Preference     `json:"preference"`
	Assessment *intake.Assessment  `json:"assessment,omitempty"`
	Plan       *mealplan.DailyPlan `json:"plan"`
	Advice     *advisor.Advice     `json:"advice,omitempty"`
}

// GeneratePlan assesses the body, assembles a plan and, when asked,
// attaches dietician notes. Advice failures are logged and never fail the plan.
func (a *App) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	start := time.Now()
	res := &PlanResult{
		RequestID: uuid.NewString(),
		Seed:      req.Seed,
	}
	if res.Seed == 0 {
		res.Seed = start.UnixNano()
	}
	log := a.logger.With(zap.String("request_id", res.RequestID), zap.String("source", req.Source))

	plan, err := a.assemble(ctx, req, res)
	elapsed := time.Since(start)
	a.recordRun(res, req, plan, err, elapsed)
	if err != nil {
		log.Info("Plan request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}
	res.Plan = plan
	log.Info("Plan generated",
		zap.Int64("seed", res.Seed),
		zap.Float64("calories", plan.Totals.Calories),
		zap.Duration("elapsed", elapsed))

	if req.WithAdvice && a.advisor != nil {
		a.attachAdvice(ctx, log, req, res)
	}
	return res, nil
}

func (a *App) assemble(ctx context.Context, req PlanRequest, res *PlanResult) (*mealplan.DailyPlan, error) {
	pref, err := food.ParsePreference(req.Preference)
	if err != nil {
		return nil, err
	}
	res.Preference = pref

	daily := req.DailyCalories
	if req.Body != nil {
		assessment, err := intake.Assess(*req.Body)
		if err != nil {
			return nil, err
		}
		res.Assessment = &assessment
		daily = assessment.DailyCalories
	}

	return a.planner.Plan(ctx, a.catalog, mealplan.DietaryProfile{
		Preference:    pref,
		Allergies:     req.Allergies,
		DailyCalories: daily,
	}, mealplan.NewRand(res.Seed))
}

func (a *App) attachAdvice(ctx context.Context, log *zap.Logger, req PlanRequest, res *PlanResult) {
	advice, err := a.advisor.Advise(ctx, advisor.Request{
		Assessment: res.Assessment,
		Preference: res.Preference,
		Allergies:  req.Allergies,
		Plan:       res.Plan,
	})

	if advice.Meta.AgentName != "" {
		metrics.ObserveAdviceUsage(advice.Meta.Usage)
		if a.metrics != nil {
			if err := a.metrics.RecordMeta(advice.Meta); err != nil {
				log.Warn("Failed to record advice metrics", zap.Error(err))
			}
		}
	}
	if err != nil {
		log.Warn("Advice unavailable", zap.Error(err))
		return
	}
	res.Advice = &advice
}

func (a *App) recordRun(res *PlanResult, req PlanRequest, plan *mealplan.DailyPlan, err error, elapsed time.Duration) {
	status := Status(err)
	metrics.ObservePlan(status, elapsed)
	if a.metrics == nil {
		return
	}

	run := metrics.PlanRun{
		RequestID: res.RequestID,
		Source:    req.Source,
		Status:    status,
		LatencyMS: elapsed.Milliseconds(),
	}
	if plan != nil {
		run.DailyCalories = plan.Totals.Calories
		for _, m := range plan.Meals {
			run.ItemCount += len(m.Items)
		}
	}
	if recErr := a.metrics.Record(run); recErr != nil {
		a.logger.Warn("Failed to record plan run", zap.String("request_id", res.RequestID), zap.Error(recErr))
	}
}

// Status classifies a GeneratePlan error for metrics.
func Status(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case IsInvalidInput(err):
		return metrics.StatusInvalid
	case errors.Is(err, mealplan.ErrEmptyCatalog):
		return metrics.StatusEmptyCatalog
	case errors.Is(err, mealplan.ErrConstraintUnsatisfiable):
		return metrics.StatusUnsatisfiable
	default:
		return metrics.StatusError
	}
}

// IsInvalidInput reports whether err was caused by the request itself.
func IsInvalidInput(err error) bool {
	return errors.Is(err, mealplan.ErrInvalidInput) ||
		errors.Is(err, intake.ErrInvalidBody) ||
		errors.Is(err, food.ErrInvalidPreference)
}
