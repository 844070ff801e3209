package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Scheduler
	RevenueCronSpec    string
	DividendCronSpec   string
	SchedulerLockTTL   time.Duration
	RevenueJobLockKey  string
	DividendJobLockKey string

	// Distribution
	PayoutBatchSize    int
	DecomposeThreshold int // holders above this count are paid via queued payout jobs

	// Queue
	QueuePollInterval   time.Duration
	QueueStallTimeout   time.Duration
	QueueStallMax       int
	QueueReclaimEvery   time.Duration
	QueueHeartbeatEvery time.Duration

	// Admin API rate limiting, e.g. "10-M" for 10 requests per minute
	TriggerRateLimit string

	// Wallet that fee-collection jobs credit
	TreasuryUserID string

	// Bank feed provider
	BankAPIBaseURL string
	BankAPIKey     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("REVENUE_CRON_SPEC", "0 2 1 * *")
	viper.SetDefault("DIVIDEND_CRON_SPEC", "0 4 1 * *")
	viper.SetDefault("SCHEDULER_LOCK_TTL", "2h")
	viper.SetDefault("PAYOUT_BATCH_SIZE", 100)
	viper.SetDefault("DECOMPOSE_THRESHOLD", 1000)
	viper.SetDefault("QUEUE_POLL_INTERVAL", "500ms")
	viper.SetDefault("QUEUE_STALL_TIMEOUT", "60s")
	viper.SetDefault("QUEUE_STALL_MAX", 3)
	viper.SetDefault("QUEUE_RECLAIM_EVERY", "30s")
	viper.SetDefault("QUEUE_HEARTBEAT_EVERY", "15s")
	viper.SetDefault("TRIGGER_RATE_LIMIT", "10-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.RevenueCronSpec = viper.GetString("REVENUE_CRON_SPEC")
	cfg.DividendCronSpec = viper.GetString("DIVIDEND_CRON_SPEC")
	cfg.SchedulerLockTTL = parseDurationOrDefault("SCHEDULER_LOCK_TTL", 2*time.Hour)
	cfg.RevenueJobLockKey = "monthly-revenue-calculation"
	cfg.DividendJobLockKey = "monthly-dividend-distribution"

	cfg.PayoutBatchSize = viper.GetInt("PAYOUT_BATCH_SIZE")
	if cfg.PayoutBatchSize <= 0 {
		cfg.PayoutBatchSize = 100
	}
	cfg.DecomposeThreshold = viper.GetInt("DECOMPOSE_THRESHOLD")
	if cfg.DecomposeThreshold <= 0 {
		cfg.DecomposeThreshold = 1000
	}

	cfg.QueuePollInterval = parseDurationOrDefault("QUEUE_POLL_INTERVAL", 500*time.Millisecond)
	cfg.QueueStallTimeout = parseDurationOrDefault("QUEUE_STALL_TIMEOUT", time.Minute)
	cfg.QueueStallMax = viper.GetInt("QUEUE_STALL_MAX")
	if cfg.QueueStallMax <= 0 {
		cfg.QueueStallMax = 3
	}
	cfg.QueueReclaimEvery = parseDurationOrDefault("QUEUE_RECLAIM_EVERY", 30*time.Second)
	cfg.QueueHeartbeatEvery = parseDurationOrDefault("QUEUE_HEARTBEAT_EVERY", 15*time.Second)

	cfg.TriggerRateLimit = viper.GetString("TRIGGER_RATE_LIMIT")
	cfg.TreasuryUserID = viper.GetString("TREASURY_USER_ID")
	cfg.BankAPIBaseURL = viper.GetString("BANK_API_BASE_URL")
	cfg.BankAPIKey = viper.GetString("BANK_API_KEY")

	return cfg, nil
}

func parseDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
