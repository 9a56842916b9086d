// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// tableNamePattern guards the table identifier interpolated into SQL;
// identifiers cannot be bind parameters.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds all runtime configuration for the ScanRole API.
type Config struct {
	Port        string
	MetricsPort string
	DatabaseURL string
	RoleTable   string
	LogLevel    string

	// Introspection settings are deliberately not required here: the auth
	// gate answers SERVER_ERROR when they are missing, so a misconfigured
	// deployment still serves health checks.
	IntrospectURL    string
	IntrospectSecret string

	TrustProxy         bool
	RateLimitPerMinute int
	RateLimitBackend   string // "memory" or "redis"
	RedisURL           string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	table := os.Getenv("ROLE_TABLE")
	if table == "" {
		table = "jobspy_normalized_jobs"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("ROLE_TABLE %q is not a valid identifier", table)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	limit := 60
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE %q is not a positive integer", raw)
		}
		limit = n
	}

	backend := os.Getenv("RATE_LIMIT_BACKEND")
	if backend == "" {
		backend = "memory"
	}
	if backend != "memory" && backend != "redis" {
		return nil, fmt.Errorf("RATE_LIMIT_BACKEND must be \"memory\" or \"redis\", got %q", backend)
	}
	redisURL := os.Getenv("REDIS_URL")
	if backend == "redis" && redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
	}

	return &Config{
		Port:               port,
		MetricsPort:        metricsPort,
		DatabaseURL:        dbURL,
		RoleTable:          table,
		LogLevel:           logLevel,
		IntrospectURL:      os.Getenv("WP_INTROSPECT_URL"),
		IntrospectSecret:   os.Getenv("WP_INTROSPECT_SECRET"),
		TrustProxy:         os.Getenv("TRUST_PROXY") == "true",
		RateLimitPerMinute: limit,
		RateLimitBackend:   backend,
		RedisURL:           redisURL,
	}, nil
}
