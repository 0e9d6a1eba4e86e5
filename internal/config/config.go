package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Rating model parameters
	HomeCourtAdvantage float64 `envconfig:"HOME_COURT_ADVANTAGE" default:"3.0"`
	SpreadIncrement    float64 `envconfig:"SPREAD_INCREMENT" default:"0.1"`
	RatingIncrement    float64 `envconfig:"RATING_INCREMENT" default:"0.01"`

	// Closing line policy
	SharpBook      string `envconfig:"SHARP_BOOK" default:"Pinnacle"`
	ConsensusBooks string `envconfig:"CONSENSUS_BOOKS" default:"DraftKings,FanDuel,BetMGM,Caesars"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ratings"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ratings_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional read-side rating cache)
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      int    `envconfig:"CACHE_TTL_RATINGS" default:"600"` // seconds

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	DrainInterval      int    `envconfig:"DRAIN_INTERVAL_SECONDS" default:"300"`
	LedgerVerifyCron   string `envconfig:"LEDGER_VERIFY_CRON" default:"0 4 * * *"`
	EnableLedgerVerify bool   `envconfig:"ENABLE_LEDGER_VERIFY" default:"true"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.SpreadIncrement <= 0 {
		return fmt.Errorf("SPREAD_INCREMENT must be positive")
	}

	if c.RatingIncrement <= 0 {
		return fmt.Errorf("RATING_INCREMENT must be positive")
	}

	if c.HomeCourtAdvantage < 0 {
		return fmt.Errorf("HOME_COURT_ADVANTAGE must not be negative")
	}

	if c.SharpBook == "" {
		return fmt.Errorf("SHARP_BOOK is required")
	}

	if len(c.ConsensusBookList()) == 0 {
		return fmt.Errorf("CONSENSUS_BOOKS must name at least one book")
	}

	return nil
}

// ConsensusBookList splits the CSV consensus book setting, dropping blanks
func (c *Config) ConsensusBookList() []string {
	var books []string
	for _, book := range strings.Split(c.ConsensusBooks, ",") {
		if trimmed := strings.TrimSpace(book); trimmed != "" {
			books = append(books, trimmed)
		}
	}
	return books
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
