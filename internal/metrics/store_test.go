package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"ai-dietician/internal/database"
	"ai-dietician/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	t.Run("DailySummary", func(t *testing.T) {
		store := newTestStore(t)
		runs := []PlanRun{
			{RequestID: "a", Source: "api", Status: StatusOK, DailyCalories: 2000, ItemCount: 9, LatencyMS: 2},
			{RequestID: "b", Source: "telegram", Status: StatusUnsatisfiable, DailyCalories: 1800, LatencyMS: 4},
			{RequestID: "c", Source: "api", Status: StatusOK, Timestamp: time.Now().AddDate(0, 0, -10)},
		}
		for _, r := range runs {
			if err := store.Record(r); err != nil {
				t.Fatalf("Record failed: %v", err)
			}
		}

		summary, err := store.GetDailySummary(7)
		if err != nil {
			t.Fatalf("GetDailySummary failed: %v", err)
		}
		if len(summary) != 1 {
			t.Fatalf("Expected 1 day, got %d", len(summary))
		}
		day := summary[0]
		if day.Runs != 2 || day.Succeeded != 1 {
			t.Errorf("Expected 2 runs with 1 success, got %d and %d", day.Runs, day.Succeeded)
		}
		if day.AvgLatencyMS != 3 {
			t.Errorf("Expected average latency 3ms, got %v", day.AvgLatencyMS)
		}
		if day.AvgDailyCalories != 1900 {
			t.Errorf("Expected average daily calories 1900, got %v", day.AvgDailyCalories)
		}
		if day.Date != time.Now().UTC().Format("2006-01-02") {
			t.Errorf("Unexpected date %q", day.Date)
		}
	})

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		store := newTestStore(t)
		if err := store.RecordMeta(shared.AgentMeta{AgentName: "advisor"}); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
		meta := shared.AgentMeta{
			AgentName: "advisor",
			Usage:     shared.TokenUsage{PromptTokens: 120, CompletionTokens: 80, Model: "gemini-1.5-flash"},
			Latency:   1500 * time.Millisecond,
		}
		if err := store.RecordMeta(meta); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}

		usage, err := store.GetDailyUsage(1)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		if usage[0].TotalExecution != 1 || usage[0].TotalPrompt != 120 || usage[0].TotalCompletion != 80 {
			t.Errorf("Unexpected usage %+v", usage[0])
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		store := newTestStore(t)
		old := time.Now().AddDate(0, 0, -40)
		if err := store.Record(PlanRun{RequestID: "old", Source: "cli", Status: StatusOK, Timestamp: old}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if err := store.Record(PlanRun{RequestID: "new", Source: "cli", Status: StatusOK}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if err := store.RecordExecution(ExecutionMetric{AgentName: "advisor", Model: "m", PromptTokens: 1, Timestamp: old}); err != nil {
			t.Fatalf("RecordExecution failed: %v", err)
		}

		removed, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if removed != 2 {
			t.Errorf("Expected 2 rows removed, got %d", removed)
		}

		summary, err := store.GetDailySummary(60)
		if err != nil {
			t.Fatalf("GetDailySummary failed: %v", err)
		}
		if len(summary) != 1 || summary[0].Runs != 1 {
			t.Errorf("Expected only the recent run to survive, got %+v", summary)
		}
	})
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("advisor", shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "x"}, 2*time.Second)
	if m.AgentName != "advisor" || m.Model != "x" || m.LatencyMS != 2000 {
		t.Errorf("Unexpected metric %+v", m)
	}
}
