package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDatabasePath = "data/dietician.db"
	defaultGeminiModel  = "gemini-1.5-flash"
	defaultPort         = "8080"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath   string
	CatalogCSVPath string
	PlannerConfig  string
	AdviceCacheDir string
	LogLevel       string
	Port           string

	// Gemini Config (optional, enables dietician notes)
	GeminiAPIKey string
	GeminiModel  string

	// API Config
	APISecret string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = defaultDatabasePath
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("PORT environment variable is not a number: %q", port)
	}

	// Telegram Config (Optional for CLI, required for Bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if telegramWebhookURL != "" && telegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS environment variable is invalid: %w", err)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		adminID, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID environment variable is invalid: %w", err)
		}
	}

	return &Config{
		DatabasePath:           databasePath,
		CatalogCSVPath:         os.Getenv("CATALOG_CSV_PATH"),
		PlannerConfig:          os.Getenv("PLANNER_CONFIG"),
		AdviceCacheDir:         os.Getenv("ADVICE_CACHE_DIR"),
		LogLevel:               strings.ToLower(os.Getenv("LOG_LEVEL")),
		Port:                   port,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GeminiModel:            geminiModel,
		APISecret:              os.Getenv("API_SECRET"),
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

// IsUserAllowed reports whether a Telegram user may talk to the bot.
// The admin is always allowed; an empty allow-list lets everyone in.
func (c *Config) IsUserAllowed(id int64) bool {
	if c.AdminTelegramID != 0 && id == c.AdminTelegramID {
		return true
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
