package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GroqAPIKey   string

	DatabasePath string
	StatePath    string

	// Optional photo-detection service
	VisionEndpoint string
	VisionAPIKey   string

	// Optional remote snapshot backup
	SyncURL       string
	SyncDeviceKey string

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if geminiAPIKey == "" && groqAPIKey == "" {
		return nil, fmt.Errorf("neither GEMINI_API_KEY nor GROQ_API_KEY environment variable is set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/cookmate.db"
	}

	statePath := os.Getenv("STATE_PATH")
	if statePath == "" {
		statePath = "data"
	}

	// Sync is optional, but the key must come with the URL
	syncURL := os.Getenv("SYNC_URL")
	syncDeviceKey := os.Getenv("SYNC_DEVICE_KEY")
	if syncURL != "" && syncDeviceKey == "" {
		return nil, fmt.Errorf("SYNC_URL is set but SYNC_DEVICE_KEY is not")
	}

	// Telegram Config (Optional for CLI, required for Bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		GeminiAPIKey:        geminiAPIKey,
		GroqAPIKey:          groqAPIKey,
		DatabasePath:        databasePath,
		StatePath:           statePath,
		VisionEndpoint:      os.Getenv("VISION_ENDPOINT"),
		VisionAPIKey:        os.Getenv("VISION_API_KEY"),
		SyncURL:             syncURL,
		SyncDeviceKey:       syncDeviceKey,
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}
