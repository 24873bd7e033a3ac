package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var supportedProviders = map[string]bool{
	"gemini":  true,
	"offline": true,
}

// app config; Gemini credentials stay in the gemini package
type Config struct {
	Port       string
	Production bool
	LogFile    string

	Provider       string
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	RateLimit      int
	RateWindow     time.Duration

	AdvanceDelay time.Duration
	SessionTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseDriver string
	DatabaseDSN    string

	ProbeEnabled  bool
	ProbeSchedule string
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	config := &Config{
		Port:       getEnvOrDefault("PORT", "8086"),
		Production: getEnvOrDefault("APP_ENV", "development") == "production",
		LogFile:    getEnvOrDefault("LOG_FILE", "logs/interview.log"),

		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		RequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 30*time.Second, &errs),
		MaxAttempts:    getEnvInt("AI_MAX_ATTEMPTS", 3, &errs),
		RetryDelay:     getEnvDuration("AI_RETRY_DELAY", time.Second, &errs),
		RateLimit:      getEnvInt("AI_RATE_LIMIT", 60, &errs),
		RateWindow:     getEnvDuration("AI_RATE_WINDOW", time.Minute, &errs),

		AdvanceDelay: getEnvDuration("ADVANCE_DELAY", 2*time.Second, &errs),
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour, &errs),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0, &errs),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnvOrDefault("DATABASE_DSN", "interview.db"),

		ProbeEnabled:  getEnvOrDefault("PROBE_ENABLED", "true") == "true",
		ProbeSchedule: getEnvOrDefault("PROBE_SCHEDULE", "@every 5m"),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if !supportedProviders[config.Provider] {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, offline")
	}
	if config.RequestTimeout <= 0 {
		return errors.New("AI_REQUEST_TIMEOUT must be positive")
	}
	if config.MaxAttempts < 1 {
		return errors.New("AI_MAX_ATTEMPTS must be at least 1")
	}
	if config.RetryDelay < 0 || config.AdvanceDelay < 0 {
		return errors.New("AI_RETRY_DELAY and ADVANCE_DELAY must not be negative")
	}
	if config.RateLimit < 1 || config.RateWindow <= 0 {
		return errors.New("AI_RATE_LIMIT and AI_RATE_WINDOW must be positive")
	}
	if config.DatabaseDriver != "sqlite" && config.DatabaseDriver != "postgres" {
		return errors.New("unsupported DATABASE_DRIVER: " + config.DatabaseDriver)
	}
	// Gemini validation is handled by gemini.NewConfig()
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("1500ms") or bare milliseconds.
func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return value
}
