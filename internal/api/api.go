// Package api serves meal plans over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ai-dietician/internal/app"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/mealplan"
)

// PlanGenerator builds plans for API callers.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req app.PlanRequest) (*app.PlanResult, error)
}

// PlanRequest is the body of POST /api/plan.
type PlanRequest struct {
	WeightKG   float64  `json:"weight_kg" binding:"required,gt=0"`
	HeightCM   float64  `json:"height_cm" binding:"required,gt=0"`
	Age        int      `json:"age" binding:"required,gt=0,lte=130"`
	Gender     string   `json:"gender" binding:"required,gender"`
	Preference string   `json:"preference"`
	Allergies  []string `json:"allergies"`
	Seed       int64    `json:"seed"`
	Advice     bool     `json:"advice"`
}

// PlanResponse is returned for a successful plan.
type PlanResponse struct {
	RequestID  string              `json:"request_id"`
	Seed       int64               `json:"seed"`
	Assessment *intake.Assessment  `json:"assessment,omitempty"`
	Meals      []mealplan.MealPlan `json:"meals"`
	Totals     mealplan.Nutrients  `json:"totals"`
	AdviceHTML string              `json:"advice_html,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
			_, err := intake.ParseGender(fl.Field().String())
			return err == nil
		})
	}
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	planner PlanGenerator
	logger  *zap.Logger
}

// NewRouter builds the gin engine: /health, /metrics and the authenticated
// /api group. An empty secret disables authentication.
func NewRouter(planner PlanGenerator, secret string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{planner: planner, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api", BearerAuth(secret))
	v1.POST("/plan", h.HandlePlan)

	return router
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// HandlePlan handles POST /api/plan.
//
// Response:
//
//	200 OK: PlanResponse
//	400 Bad Request: malformed body or invalid measurements
//	422 Unprocessable Entity: nothing left after filtering, or no meal fits its target
//	500 Internal Server Error: anything else
func (h *Handlers) HandlePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}

	gender, _ := intake.ParseGender(req.Gender)
	res, err := h.planner.GeneratePlan(c.Request.Context(), app.PlanRequest{
		Body: &intake.Body{
			Gender:   gender,
			HeightCM: req.HeightCM,
			WeightKG: req.WeightKG,
			Age:      req.Age,
		},
		Preference: req.Preference,
		Allergies:  req.Allergies,
		Seed:       req.Seed,
		WithAdvice: req.Advice,
		Source:     "api",
	})
	if err != nil {
		status, code := classify(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Plan generation failed", zap.Error(err))
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	resp := PlanResponse{
		RequestID:  res.RequestID,
		Seed:       res.Seed,
		Assessment: res.Assessment,
		Meals:      res.Plan.Meals,
		Totals:     res.Plan.Totals,
	}
	if res.Advice != nil {
		resp.AdviceHTML = res.Advice.HTML
	}
	c.JSON(http.StatusOK, resp)
}

func classify(err error) (int, string) {
	switch {
	case app.IsInvalidInput(err):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, mealplan.ErrEmptyCatalog):
		return http.StatusUnprocessableEntity, "EMPTY_CATALOG"
	case errors.Is(err, mealplan.ErrConstraintUnsatisfiable):
		return http.StatusUnprocessableEntity, "UNSATISFIABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
