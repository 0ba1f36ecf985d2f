package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultPort           = "8080"
	defaultDatabasePath   = "library.db"
	defaultRateLimitRPS   = 10
	defaultRateLimitBurst = 20
)

type Config struct {
	// database settings
	DatabaseDriver string // sqlite or postgres
	DatabasePath   string // sqlite file path
	DatabaseDSN    string // postgres connection string
	SQLLogLevel    string // silent, error, warn, info

	// http settings
	Port               string
	CORSAllowedOrigins []string
	RateLimitRPS       int
	RateLimitBurst     int

	// development or production
	LogMode string

	// problems found while loading, logged once the app logger exists
	Warnings []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int, warnings *[]string) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		*warnings = append(*warnings, fmt.Sprintf("invalid %s '%s', using default %d", envVar, valStr, defaultVal))
		return defaultVal
	}
	return val
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER '%s'", driver)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if driver == DriverPostgres && dsn == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=%s", DriverPostgres)
	}

	var warnings []string
	cfg := Config{
		DatabaseDriver:     driver,
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		DatabaseDSN:        dsn,
		SQLLogLevel:        strings.ToLower(getEnvOrDefault("SQL_LOG_LEVEL", "warn")),
		Port:               getEnvOrDefault("PORT", defaultPort),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitRPS:       getEnvIntOrDefault("RATE_LIMIT_RPS", defaultRateLimitRPS, &warnings),
		RateLimitBurst:     getEnvIntOrDefault("RATE_LIMIT_BURST", defaultRateLimitBurst, &warnings),
		LogMode:            getEnvOrDefault("LOG_MODE", "development"),
	}
	cfg.Warnings = warnings

	return cfg, nil
}
