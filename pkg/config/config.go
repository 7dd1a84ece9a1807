package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: 분석 이력 저장소)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Quote    QuoteConfig
	Treasury TreasuryConfig

	// Screening
	Screening ScreeningConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// QuoteConfig holds the remote quote service configuration
type QuoteConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int // 초당 요청 제한 (Redis 미사용 시 로컬 limiter)
}

// TreasuryConfig holds the HTML fallback source for the 10-year yield
type TreasuryConfig struct {
	PageURL  string
	Selector string
}

// ScreeningConfig holds protocol and portfolio defaults
type ScreeningConfig struct {
	ProtocolFile     string
	Watchlist        []string
	RescreenSchedule string // cron (with seconds)
	InvestorName     string
	TotalCapital     float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Quote: QuoteConfig{
			BaseURL:    strings.TrimRight(getEnv("QUOTE_API_BASE_URL", "http://localhost:5000"), "/"),
			Timeout:    getEnvAsDuration("QUOTE_API_TIMEOUT", "10s"),
			RatePerSec: getEnvAsInt("QUOTE_RATE_PER_SEC", 5),
		},

		Treasury: TreasuryConfig{
			PageURL:  getEnv("TREASURY_PAGE_URL", ""),
			Selector: getEnv("TREASURY_SELECTOR", "[data-field=yield]"),
		},

		Screening: ScreeningConfig{
			ProtocolFile:     getEnv("PROTOCOL_FILE", ""),
			Watchlist:        getEnvAsList("WATCHLIST"),
			RescreenSchedule: getEnv("RESCREEN_SCHEDULE", "0 30 17 * * 1-5"),
			InvestorName:     getEnv("INVESTOR_NAME", "Anonymous Investor"),
			TotalCapital:     getEnvAsFloat("TOTAL_CAPITAL", 100000),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Quote.BaseURL == "" {
		return fmt.Errorf("QUOTE_API_BASE_URL is required")
	}

	if c.Quote.RatePerSec <= 0 {
		return fmt.Errorf("QUOTE_RATE_PER_SEC must be > 0")
	}

	if c.Screening.TotalCapital <= 0 {
		return fmt.Errorf("TOTAL_CAPITAL must be > 0")
	}

	if strings.TrimSpace(c.Screening.InvestorName) == "" {
		return fmt.Errorf("INVESTOR_NAME must not be blank")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}
