package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-dietician/internal/app"
	"ai-dietician/internal/config"
	"ai-dietician/internal/food"
	"ai-dietician/internal/intake"
	"ai-dietician/internal/mealplan"
	"ai-dietician/internal/metrics"
)

const usageText = "🥗 *AI Dietician*\n\n" +
	"`/plan <kg> <cm> <age> <male|female> [veg|any] [allergy, ...]`\n" +
	"Example: `/plan 72 178 31 male veg peanut, mushroom`\n\n" +
	"Add `+notes` at the end for dietician notes."

const planTimeout = 30 * time.Second

// Sender delivers messages to Telegram. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// PlanGenerator builds plans for bot users.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req app.PlanRequest) (*app.PlanResult, error)
}

// MetricsReader exposes the stored metrics for the admin report.
type MetricsReader interface {
	GetDailySummary(days int) ([]metrics.DailySummary, error)
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API and the plan generator.
type Bot struct {
	api          Sender
	planner      PlanGenerator
	metricsStore MetricsReader
	cfg          *config.Config
	logger       *zap.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	planner PlanGenerator,
	metricsStore MetricsReader,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook for %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	logger.Info("Webhook set", zap.String("response", resp.Description))

	return newBot(api, cfg, planner, metricsStore, logger), nil
}

func newBot(api Sender, cfg *config.Config, planner PlanGenerator, metricsStore MetricsReader, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:          api,
		planner:      planner,
		metricsStore: metricsStore,
		cfg:          cfg,
		logger:       logger,
	}
}

// HandleWebhook receives Telegram updates. Messages are processed in the
// background so Telegram gets its 200 right away.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("Error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.cfg.IsUserAllowed(update.Message.From.ID) {
		b.logger.Warn("⚠️ Unauthorized access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName))
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	command, args := splitCommand(msg.Text)
	switch command {
	case "/metrics":
		b.handleMetricsRequest(msg)
	case "/plan":
		b.handlePlanRequest(msg, args)
	default:
		b.sendMarkdown(msg.Chat.ID, usageText)
	}
}

// splitCommand returns the lower-cased command without a @botname suffix and
// the rest of the text.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	command, args, _ := strings.Cut(text, " ")
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return strings.ToLower(command), strings.TrimSpace(args)
}

// parsePlanCommand reads "<kg> <cm> <age> <gender> [veg|any] [allergy, ...] [+notes]".
func parsePlanCommand(args string) (app.PlanRequest, error) {
	fields := strings.Fields(args)
	req := app.PlanRequest{Source: "telegram"}
	if n := len(fields); n > 0 && strings.EqualFold(fields[n-1], "+notes") {
		req.WithAdvice = true
		fields = fields[:n-1]
	}
	if len(fields) < 4 {
		return req, fmt.Errorf("%w: expected weight, height, age and gender", intake.ErrInvalidBody)
	}

	weight, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return req, fmt.Errorf("%w: weight %q is not a number", intake.ErrInvalidBody, fields[0])
	}
	height, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return req, fmt.Errorf("%w: height %q is not a number", intake.ErrInvalidBody, fields[1])
	}
	age, err := strconv.Atoi(fields[2])
	if err != nil {
		return req, fmt.Errorf("%w: age %q is not a whole number", intake.ErrInvalidBody, fields[2])
	}
	gender, err := intake.ParseGender(fields[3])
	if err != nil {
		return req, err
	}
	req.Body = &intake.Body{Gender: gender, HeightCM: height, WeightKG: weight, Age: age}

	rest := fields[4:]
	if len(rest) > 0 {
		if _, err := food.ParsePreference(rest[0]); err == nil {
			req.Preference = rest[0]
			rest = rest[1:]
		}
	}
	req.Allergies = food.ParseAllergies(strings.Join(rest, " "))
	return req, nil
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message, args string) {
	req, err := parsePlanCommand(args)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("❌ %s\n\n%s", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, err.Error()), usageText))
		return
	}

	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Balancing your meals)")
	replyMsg.ParseMode = tgbotapi.ModeMarkdown
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		b.logger.Error("Failed to send initial reply", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	res, err := b.planner.GeneratePlan(ctx, req)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, failureText(err))
		return
	}

	planText, adviceText := formatPlanMarkdownParts(res)
	b.edit(msg.Chat.ID, sentMsg.MessageID, planText)

	if adviceText != "" {
		if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, adviceText)); err != nil {
			b.logger.Warn("Failed to send advice", zap.Error(err))
		}
	}
}

func failureText(err error) string {
	switch {
	case app.IsInvalidInput(err):
		return fmt.Sprintf("❌ *Invalid input:* %s", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, err.Error()))
	case errors.Is(err, mealplan.ErrEmptyCatalog):
		return "🚫 *No foods left* after applying your preference and allergies. Try fewer exclusions."
	case errors.Is(err, mealplan.ErrConstraintUnsatisfiable):
		return "⚖️ *Could not balance your meals* with the available foods. Please try again."
	default:
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		return fmt.Sprintf("❌ *Error generating plan:*\n```\n%v\n```", safeErr)
	}
}

func formatPlanMarkdownParts(res *app.PlanResult) (string, string) {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

	var pb strings.Builder
	pb.WriteString("📅 *Daily Meal Plan*\n\n")
	if a := res.Assessment; a != nil {
		pb.WriteString(fmt.Sprintf("BMI %.2f (%s), target *%.0f kcal*\n\n", a.BMI, a.Category, a.DailyCalories))
	}

	for _, meal := range res.Plan.Meals {
		pb.WriteString(fmt.Sprintf("*%s* (%.0f / %.0f kcal)\n", esc(titleCase(meal.Name)), meal.Totals.Calories, meal.Target))
		for _, it := range meal.Items {
			pb.WriteString(fmt.Sprintf("• %s: %.0f kcal\n", esc(it.Name), it.Calories))
		}
		pb.WriteString("\n")
	}

	t := res.Plan.Totals
	pb.WriteString(fmt.Sprintf("🔥 *Total:* %.0f kcal\n", t.Calories))
	pb.WriteString(fmt.Sprintf("_Protein %.0fg · Carbs %.0fg · Fat %.0fg_\n", t.Protein, t.Carbs, t.Fat))
	pb.WriteString(fmt.Sprintf("\nSeed: `%d`", res.Seed))

	var advice string
	if res.Advice != nil {
		advice = "📝 Dietician notes\n\n" + res.Advice.Markdown
	}
	return pb.String(), advice
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if b.cfg.AdminTelegramID == 0 || msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	summary, err := b.metricsStore.GetDailySummary(7)
	if err != nil {
		b.logger.Error("Failed to fetch plan metrics", zap.Error(err))
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.logger.Error("Failed to fetch usage metrics", zap.Error(err))
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Plans (last 7 days)*\n")
	if len(summary) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range summary {
		sb.WriteString(fmt.Sprintf("• *%s*: %d/%d ok, avg %.0f kcal, %.1fms\n", d.Date, d.Succeeded, d.Runs, d.AvgDailyCalories, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *Dietician Notes*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n⚙️ *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
