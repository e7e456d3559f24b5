package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ai-dietician/internal/shared"
)

// Plan run outcomes.
const (
	StatusOK            = "ok"
	StatusInvalid       = "invalid"
	StatusEmptyCatalog  = "empty_catalog"
	StatusUnsatisfiable = "unsatisfiable"
	StatusError         = "error"
)

// sqlite compares timestamps as text, so every row uses one layout.
const timestampLayout = "2006-01-02 15:04:05"

// PlanRun records the outcome of a single plan request.
type PlanRun struct {
	RequestID     string
	Source        string
	Status        string
	DailyCalories float64
	ItemCount     int
	LatencyMS     int64
	Timestamp     time.Time
}

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a plan run to the database.
func (s *Store) Record(r PlanRun) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO plan_runs (request_id, source, status, daily_calories, item_count, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RequestID, r.Source, r.Status, r.DailyCalories, r.ItemCount, r.LatencyMS, stamp(r.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to record plan run: %w", err)
	}
	return nil
}

// RecordExecution saves an agent execution metric to the database.
func (s *Store) RecordExecution(m ExecutionMetric) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO execution_metrics (agent_name, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.AgentName, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, stamp(m.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.AgentMeta.
func (s *Store) RecordMeta(meta shared.AgentMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.RecordExecution(MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// DailySummary aggregates plan runs for a single day.
type DailySummary struct {
	Date             string
	Runs             int
	Succeeded        int
	AvgLatencyMS     float64
	AvgDailyCalories float64
}

// GetDailySummary retrieves plan run totals for the last N days, newest first.
func (s *Store) GetDailySummary(days int) ([]DailySummary, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT date(timestamp) AS day,
		       COUNT(*),
		       SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		       AVG(latency_ms),
		       AVG(daily_calories)
		FROM plan_runs
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`,
		StatusOK, since(days),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan runs: %w", err)
	}
	defer rows.Close()

	var results []DailySummary
	for rows.Next() {
		var (
			d                DailySummary
			day              sql.NullString
			latency, kcalAvg sql.NullFloat64
		)
		if err := rows.Scan(&day, &d.Runs, &d.Succeeded, &latency, &kcalAvg); err != nil {
			return nil, fmt.Errorf("failed to scan plan runs: %w", err)
		}
		d.Date = "Unknown"
		if day.Valid {
			d.Date = day.String
		}
		d.AvgLatencyMS = latency.Float64
		d.AvgDailyCalories = kcalAvg.Float64
		results = append(results, d)
	}
	return results, rows.Err()
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT date(timestamp) AS day, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`,
		since(days),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution metrics: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u                  DailyUsage
			day                sql.NullString
			prompt, completion sql.NullInt64
		)
		if err := rows.Scan(&day, &u.TotalExecution, &prompt, &completion); err != nil {
			return nil, fmt.Errorf("failed to scan execution metrics: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		u.TotalPrompt = int(prompt.Int64)
		u.TotalCompletion = int(completion.Int64)
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many rows were deleted.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := since(olderThanDays)

	var removed int64
	for _, table := range []string{"plan_runs", "execution_metrics"} {
		res, err := s.db.ExecContext(context.Background(), "DELETE FROM "+table+" WHERE timestamp < ?", threshold)
		if err != nil {
			return removed, fmt.Errorf("failed to clean up %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("failed to count removed %s rows: %w", table, err)
		}
		removed += n
	}
	return removed, nil
}

// MapUsage helper to convert shared.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

func stamp(ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.UTC().Format(timestampLayout)
}

func since(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(timestampLayout)
}
