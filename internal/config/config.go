package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Portfolio PortfolioConfig
	Logging   LoggingConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PortfolioConfig holds valuation-specific configuration.
//
// BaseCurrency is the reporting currency all valuations are normalized into.
// BackfillUSDRate is the fixed USD-to-base rate used by the bulk snapshot
// backfill driver; the live valuation path uses persisted exchange rates
// instead.
type PortfolioConfig struct {
	BaseCurrency    string
	BackfillUSDRate float64
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// SchedulerConfig holds the daily snapshot scheduler configuration.
type SchedulerConfig struct {
	Enabled  bool
	CronSpec string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	usdRate, err := strconv.ParseFloat(getEnv("BACKFILL_USD_RATE", "1.38"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKFILL_USD_RATE: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost",
			},
		},
		Portfolio: PortfolioConfig{
			BaseCurrency:    getEnv("BASE_CURRENCY", "CAD"),
			BackfillUSDRate: usdRate,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_FORMAT", "json") != "json",
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnv("SCHEDULER_ENABLED", "true") == "true",
			// Default: weekdays at 22:00, after North American market close.
			CronSpec: getEnv("SNAPSHOT_CRON", "0 22 * * 1-5"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
