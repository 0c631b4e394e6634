// config/config.go - Environment configuration
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	AppEnv  string
	LogMode string

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	JWTSecret   string
	CORSOrigins string

	RedisAddr    string
	RedisChannel string

	WeeklyResetCron string
	GameFile        string

	ActionRateLimit     int
	ActionRateWindow    time.Duration
	LeaderboardMaxLimit int
}

// Load reads .env (if present) and the process environment, and validates
// everything the server needs.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the configuration without validating it. Tools that only
// touch the database use it together with ValidateDatabase.
func FromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogMode:             getEnv("LOG_MODE", "dev"),
		DatabaseDriver:      strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          getEnv("SQLITE_PATH", "./data/lifetracker.db"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		CORSOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisChannel:        getEnv("REDIS_CHANNEL", "gamification"),
		WeeklyResetCron:     getEnv("WEEKLY_RESET_CRON", "0 0 * * 1"),
		GameFile:            os.Getenv("GAME_FILE"),
		ActionRateLimit:     getEnvInt("ACTION_RATE_LIMIT", 60),
		ActionRateWindow:    time.Minute,
		LeaderboardMaxLimit: getEnvInt("LEADERBOARD_MAX_LIMIT", 100),
	}

	if cfg.DatabaseURL == "" && cfg.DatabaseDriver == "postgres" {
		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "lifetracker"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	return cfg
}

func (c *Config) ValidateDatabase() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if c.AppEnv != "development" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}
	if c.ActionRateLimit <= 0 {
		return fmt.Errorf("ACTION_RATE_LIMIT must be positive")
	}
	if c.LeaderboardMaxLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_MAX_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}
