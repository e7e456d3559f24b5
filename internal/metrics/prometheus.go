package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ai-dietician/internal/shared"
)

var (
	// plansTotal counts plan requests by outcome.
	// Labels: status (ok, invalid, empty_catalog, unsatisfiable, error)
	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dietician",
		Name:      "plans_total",
		Help:      "Total plan requests by outcome",
	}, []string{"status"})

	planDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dietician",
		Name:      "plan_duration_seconds",
		Help:      "Time spent assembling a daily plan, advice excluded",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// adviceTokensTotal counts tokens used for dietician notes.
	// Labels: direction (input, output)
	adviceTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dietician",
		Name:      "advice_tokens_total",
		Help:      "Total tokens spent on dietician notes by direction",
	}, []string{"direction"})
)

// ObservePlan records a plan outcome and how long it took.
func ObservePlan(status string, elapsed time.Duration) {
	plansTotal.WithLabelValues(status).Inc()
	if status == StatusOK {
		planDurationSeconds.Observe(elapsed.Seconds())
	}
}

// ObserveAdviceUsage adds advice token usage to the counters.
func ObserveAdviceUsage(usage shared.TokenUsage) {
	adviceTokensTotal.WithLabelValues("input").Add(float64(usage.PromptTokens))
	adviceTokensTotal.WithLabelValues("output").Add(float64(usage.CompletionTokens))
}
