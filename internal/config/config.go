package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/digitbot/risk"
)

// Config holds all configuration for the bot
type Config struct {
	// Mode
	Debug bool

	// Feed
	Feed      string // "replay" or "live"
	FeedURL   string // WebSocket endpoint for the live feed
	Symbol    string
	TicksFile string // Replay source, empty reads stdin

	// Money management
	StartingBalance decimal.Decimal
	BaseStake       decimal.Decimal
	RiskLevel       risk.Level
	MinStake        decimal.Decimal
	MaxStakePct     decimal.Decimal
	DailyLossLimit  decimal.Decimal
	ProfitTarget    decimal.Decimal
	SmallCapital    bool // Use the balance-tiered presets instead of the values above
	StopOnProfit    bool
	PreviewLevels   int // Recovery levels logged at startup

	// Telegram
	TelegramToken  string // Empty disables the bot
	TelegramChatID int64

	// Database
	DatabasePath string // Empty disables the journal

	// Metrics
	MetricsAddr     string // Empty disables the /metrics endpoint
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	defaults := risk.DefaultConfig(decimal.NewFromInt(10))

	cfg := &Config{
		Debug: getEnvBool("DEBUG", false),

		// Feed
		Feed:      strings.ToLower(getEnv("FEED", "replay")),
		FeedURL:   os.Getenv("FEED_URL"),
		Symbol:    getEnv("SYMBOL", "R_100"),
		TicksFile: os.Getenv("TICKS_FILE"),

		// Money management
		StartingBalance: getEnvDecimal("STARTING_BALANCE", defaults.StartingBalance),
		BaseStake:       getEnvDecimal("BASE_STAKE", defaults.BaseStake),
		RiskLevel:       defaults.Level,
		MinStake:        getEnvDecimal("MIN_STAKE", defaults.MinStake),
		MaxStakePct:     getEnvDecimal("MAX_STAKE_PCT", defaults.MaxStakePct),
		DailyLossLimit:  getEnvDecimal("DAILY_LOSS_LIMIT", defaults.DailyLossLimit),
		ProfitTarget:    getEnvDecimal("PROFIT_TARGET", defaults.ProfitTarget),
		SmallCapital:    getEnvBool("SMALL_CAPITAL", false),
		StopOnProfit:    getEnvBool("STOP_ON_PROFIT", false),
		PreviewLevels:   getEnvInt("PREVIEW_LEVELS", 5),

		// Telegram
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),

		// Database
		DatabasePath: os.Getenv("DATABASE_PATH"),

		// Metrics
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}

	if cfg.Feed != "replay" && cfg.Feed != "live" {
		return nil, fmt.Errorf("invalid FEED %q: want replay or live", cfg.Feed)
	}
	if cfg.Feed == "live" && cfg.Symbol == "*" {
		return nil, fmt.Errorf("live feed needs a concrete SYMBOL")
	}

	if cfg.PreviewLevels < 0 {
		return nil, fmt.Errorf("invalid PREVIEW_LEVELS %d: must not be negative", cfg.PreviewLevels)
	}

	// Parse risk level
	if level := os.Getenv("RISK_LEVEL"); level != "" {
		l, err := risk.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid RISK_LEVEL: %w", err)
		}
		cfg.RiskLevel = l
	}

	// Validate money settings up front
	if err := cfg.Money().Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Money returns the money manager configuration
func (c *Config) Money() risk.Config {
	if c.SmallCapital {
		return risk.SmallCapitalConfig(c.StartingBalance, c.BaseStake)
	}
	return risk.Config{
		StartingBalance: c.StartingBalance,
		BaseStake:       c.BaseStake,
		Level:           c.RiskLevel,
		MinStake:        c.MinStake,
		MaxStakePct:     c.MaxStakePct,
		DailyLossLimit:  c.DailyLossLimit,
		ProfitTarget:    c.ProfitTarget,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
