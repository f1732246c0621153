// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Scraper     ScraperConfig
	Notify      NotifyConfig
	Schedule    ScheduleConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	// URL is a postgres connection string. When empty the store falls back
	// to an embedded sqlite file at SQLitePath.
	URL          string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type ScraperConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
	// DelayMS is the fixed pause between consecutive scrape calls in a
	// batch run, respecting the extraction API's rate limits.
	DelayMS int
}

type NotifyConfig struct {
	WebhookURL     string
	TelegramToken  string
	TelegramChatID int64
	// DropThreshold is the minimum fractional price drop that fires an alert.
	DropThreshold float64
}

type ScheduleConfig struct {
	Enabled         bool
	IntervalMinutes int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			SQLitePath:   getEnv("SQLITE_PATH", "data/dropwatch.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Scraper: ScraperConfig{
			APIKey:         getEnv("SCRAPE_API_KEY", ""),
			BaseURL:        getEnv("SCRAPE_API_URL", "https://api.firecrawl.dev/v1/scrape"),
			TimeoutSeconds: getEnvAsInt("SCRAPE_TIMEOUT_SECONDS", 30),
			DelayMS:        getEnvAsInt("SCRAPE_DELAY_MS", 1000),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID: getEnvAsInt64("TELEGRAM_CHAT_ID", 0),
			DropThreshold:  getEnvAsFloat("PRICE_DROP_THRESHOLD", 0.05),
		},
		Schedule: ScheduleConfig{
			Enabled:         getEnvAsBool("SCHEDULE_ENABLED", true),
			IntervalMinutes: getEnvAsInt("CHECK_INTERVAL_MINUTES", 60),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Notify.DropThreshold <= 0 || c.Notify.DropThreshold >= 1 {
		return fmt.Errorf("PRICE_DROP_THRESHOLD must be a fraction in (0, 1), got %v", c.Notify.DropThreshold)
	}

	if c.Scraper.APIKey == "" && c.Environment == "production" {
		return fmt.Errorf("SCRAPE_API_KEY is required in production")
	}

	if c.Schedule.IntervalMinutes <= 0 {
		return fmt.Errorf("CHECK_INTERVAL_MINUTES must be positive, got %d", c.Schedule.IntervalMinutes)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
