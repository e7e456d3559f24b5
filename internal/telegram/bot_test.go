package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-dietician/internal/advisor"
	"ai-dietician/internal/app"
	"ai-dietician/internal/config"
	"ai-dietician/internal/food"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/mealplan"
	"ai-dietician/internal/metrics"
)

type mockSender struct {
	mu   sync.Mutex
	sent []string
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		m.sent = append(m.sent, v.Text)
	case tgbotapi.EditMessageTextConfig:
		m.sent = append(m.sent, v.Text)
	}
	return tgbotapi.Message{MessageID: len(m.sent)}, nil
}

func (m *mockSender) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

type mockPlanner struct {
	res     *app.PlanResult
	err     error
	lastReq app.PlanRequest
}

func (m *mockPlanner) GeneratePlan(ctx context.Context, req app.PlanRequest) (*app.PlanResult, error) {
	m.lastReq = req
	return m.res, m.err
}

type mockMetrics struct{}

func (mockMetrics) GetDailySummary(days int) ([]metrics.DailySummary, error) {
	return []metrics.DailySummary{{Date: "2026-10-15", Runs: 4, Succeeded: 3, AvgDailyCalories: 2050, AvgLatencyMS: 1.5}}, nil
}

func (mockMetrics) GetDailyUsage(days int) ([]metrics.DailyUsage, error) {
	return nil, nil
}

func testResult() *app.PlanResult {
	breakfast := mealplan.MealPlan{
		Name:   "breakfast",
		Target: 600,
		Items: []food.Item{
			{Name: "Masala_Dosa", Calories: 350},
			{Name: "Curd", Calories: 180},
		},
		Totals: mealplan.Nutrients{Calories: 530, Protein: 14, Carbs: 58, Fat: 17},
	}
	return &app.PlanResult{
		RequestID:  "req-1",
		Seed:       42,
		Assessment: &intake.Assessment{BMI: 22.72, Category: intake.NormalWeight, DailyCalories: 2000},
		Plan:       &mealplan.DailyPlan{Meals: []mealplan.MealPlan{breakfast}, Totals: breakfast.Totals},
	}
}

func message(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func TestParsePlanCommand(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		req, err := parsePlanCommand("72 178 31 male veg peanut, button mushroom +notes")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if req.Body == nil || req.Body.WeightKG != 72 || req.Body.HeightCM != 178 || req.Body.Age != 31 || req.Body.Gender != intake.Male {
			t.Errorf("Unexpected body %+v", req.Body)
		}
		if req.Preference != "veg" {
			t.Errorf("Expected veg preference, got %q", req.Preference)
		}
		if len(req.Allergies) != 2 || req.Allergies[1] != "button mushroom" {
			t.Errorf("Unexpected allergies %q", req.Allergies)
		}
		if !req.WithAdvice || req.Source != "telegram" {
			t.Errorf("Expected advice from telegram, got %+v", req)
		}
	})

	t.Run("AllergiesWithoutPreference", func(t *testing.T) {
		req, err := parsePlanCommand("60 165 28 f egg")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if req.Preference != "" || len(req.Allergies) != 1 || req.Allergies[0] != "egg" {
			t.Errorf("Unexpected request %+v", req)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, args := range []string{"", "70 175 30", "seventy 175 30 male", "70 175 thirty male", "70 175 30 robot"} {
			if _, err := parsePlanCommand(args); !errors.Is(err, intake.ErrInvalidBody) {
				t.Errorf("parsePlanCommand(%q): expected ErrInvalidBody, got %v", args, err)
			}
		}
	})
}

func TestSplitCommand(t *testing.T) {
	cmd, args := splitCommand("/Plan@DieticianBot 70 175 30 male")
	if cmd != "/plan" || args != "70 175 30 male" {
		t.Errorf("Unexpected split %q %q", cmd, args)
	}
}

func TestFormatPlanMarkdownParts(t *testing.T) {
	res := testResult()
	planOutput, adviceOutput := formatPlanMarkdownParts(res)

	for _, want := range []string{
		"📅 *Daily Meal Plan*",
		"BMI 22.72 (Normal weight), target *2000 kcal*",
		"*Breakfast* (530 / 600 kcal)",
		"• Masala\\_Dosa: 350 kcal",
		"🔥 *Total:* 530 kcal",
		"Seed: `42`",
	} {
		if !strings.Contains(planOutput, want) {
			t.Errorf("Expected plan to contain %q:\n%s", want, planOutput)
		}
	}
	if adviceOutput != "" {
		t.Errorf("Expected no advice, got %q", adviceOutput)
	}

	res.Advice = &advisor.Advice{Markdown: "- drink water"}
	_, adviceOutput = formatPlanMarkdownParts(res)
	if !strings.Contains(adviceOutput, "- drink water") {
		t.Errorf("Expected advice text, got %q", adviceOutput)
	}
}

func TestProcessMessage(t *testing.T) {
	cfg := &config.Config{AdminTelegramID: 1}

	t.Run("PlanSuccess", func(t *testing.T) {
		sender := &mockSender{}
		planner := &mockPlanner{res: testResult()}
		bot := newBot(sender, cfg, planner, mockMetrics{}, nil)

		bot.processMessage(message(5, "/plan 70 175 30 male"))

		if len(sender.sent) != 2 {
			t.Fatalf("Expected status and plan messages, got %d", len(sender.sent))
		}
		if !strings.Contains(sender.last(), "Daily Meal Plan") {
			t.Errorf("Expected plan in final message, got %q", sender.last())
		}
		if planner.lastReq.Body == nil {
			t.Error("Expected body to be passed to planner")
		}
	})

	t.Run("PlanFailures", func(t *testing.T) {
		cases := map[string]error{
			"Invalid input":          fmt.Errorf("wrapped: %w", mealplan.ErrInvalidInput),
			"No foods left":          fmt.Errorf("%w: 3 of 3 items excluded", food.ErrEmptyCatalog),
			"Could not balance":      mealplan.ErrConstraintUnsatisfiable,
			"Error generating plan:": errors.New("boom"),
		}
		for want, planErr := range cases {
			sender := &mockSender{}
			bot := newBot(sender, cfg, &mockPlanner{err: planErr}, mockMetrics{}, nil)
			bot.processMessage(message(5, "/plan 70 175 30 male"))
			if !strings.Contains(sender.last(), want) {
				t.Errorf("Expected %q in reply, got %q", want, sender.last())
			}
		}
	})

	t.Run("BadArguments", func(t *testing.T) {
		sender := &mockSender{}
		planner := &mockPlanner{}
		bot := newBot(sender, cfg, planner, mockMetrics{}, nil)
		bot.processMessage(message(5, "/plan 70"))
		if len(sender.sent) != 1 || !strings.Contains(sender.last(), "/plan <kg>") {
			t.Errorf("Expected usage reply, got %q", sender.sent)
		}
		if planner.lastReq.Source != "" {
			t.Error("Expected planner not to be called")
		}
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		sender := &mockSender{}
		bot := newBot(sender, cfg, &mockPlanner{}, mockMetrics{}, nil)
		bot.processMessage(message(5, "hello"))
		if !strings.Contains(sender.last(), "AI Dietician") {
			t.Errorf("Expected usage text, got %q", sender.last())
		}
	})

	t.Run("MetricsAdminOnly", func(t *testing.T) {
		sender := &mockSender{}
		bot := newBot(sender, cfg, &mockPlanner{}, mockMetrics{}, nil)

		bot.processMessage(message(5, "/metrics"))
		if !strings.Contains(sender.last(), "Access Denied") {
			t.Errorf("Expected access denied, got %q", sender.last())
		}

		bot.processMessage(message(1, "/metrics"))
		report := sender.last()
		if !strings.Contains(report, "*2026-10-15*: 3/4 ok, avg 2050 kcal") {
			t.Errorf("Expected plan summary in report, got %q", report)
		}
		if !strings.Contains(report, "System Health") {
			t.Errorf("Expected health section, got %q", report)
		}
	})
}

func TestHandleWebhook(t *testing.T) {
	cfg := &config.Config{TelegramAllowedUserIDs: []int64{9}}
	sender := &mockSender{}
	bot := newBot(sender, cfg, &mockPlanner{}, mockMetrics{}, nil)

	t.Run("BadPayload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		bot.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("UnauthorizedIgnored", func(t *testing.T) {
		body := `{"update_id":1,"message":{"message_id":1,"from":{"id":5},"chat":{"id":5},"text":"/plan 70 175 30 male"}}`
		rec := httptest.NewRecorder()
		bot.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if sender.last() != "" {
			t.Errorf("Expected no reply to unauthorized user, got %q", sender.last())
		}
	})
}
