package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"incoin/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration, empty disables the event stream
	NATSServers string

	// Health API
	HealthPort int

	// Settlement schedule
	SettlementTimezone  string
	PayoutHour          int          // Hour of day when company payroll runs
	InterestWeekday     time.Weekday // Day of week when bank interest runs
	StockUpdateInterval time.Duration

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int
	OTelServiceName          string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
				instance.DiscordToken = "test-token"
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Location returns the timezone used for the daily and weekly schedules
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SettlementTimezone)
	if err != nil {
		log.Warnf("Unknown settlement timezone %q, falling back to UTC: %v", c.SettlementTimezone, err)
		return time.UTC
	}
	return loc
}

// load loads configuration from the environment, reading a .env file first when one exists
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on existing environment")
	}

	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		HealthPort: getEnvInt("HEALTH_PORT", 8000),

		SettlementTimezone:  getEnvWithDefault("SETTLEMENT_TIMEZONE", "Asia/Tokyo"),
		PayoutHour:          getEnvInt("PAYOUT_HOUR", 21),
		InterestWeekday:     time.Weekday(getEnvInt("INTEREST_WEEKDAY", int(time.Thursday))),
		StockUpdateInterval: 10 * time.Minute,

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: getEnvInt("OTEL_EXPORT_INTERVAL_MS", 30000),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "incoin"),

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if interval := os.Getenv("STOCK_UPDATE_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			config.StockUpdateInterval = parsed
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if config.PayoutHour < 0 || config.PayoutHour > 23 {
		return nil, fmt.Errorf("PAYOUT_HOUR must be between 0 and 23, got %d", config.PayoutHour)
	}
	if config.InterestWeekday < time.Sunday || config.InterestWeekday > time.Saturday {
		return nil, fmt.Errorf("INTEREST_WEEKDAY must be between 0 and 6, got %d", config.InterestWeekday)
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Warnf("Ignoring non-numeric %s=%q", key, value)
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HealthPort:          8000,
		SettlementTimezone:  "Asia/Tokyo",
		PayoutHour:          21,
		InterestWeekday:     time.Thursday,
		StockUpdateInterval: 10 * time.Minute,
		OTelExporterType:    "none",
		OTelServiceName:     "incoin",
		LogLevel:            "info",
	}
}
