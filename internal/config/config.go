package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds backend runtime configuration sourced from env vars.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "profissa"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		JWTTTL:        time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute,
		AuthRateLimit: positiveFloat(os.Getenv("AUTH_RATE_LIMIT_RPS"), 5),
		AuthRateBurst: positiveInt(os.Getenv("AUTH_RATE_LIMIT_BURST"), 10),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL       string
	SessionFile  string
	SessionRedis string
	PollInterval time.Duration
	LogFile      string
}

// LoadClient reads client configuration from the environment. Every field has a default.
func LoadClient() ClientConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return ClientConfig{
		APIURL:       strings.TrimRight(fallback(os.Getenv("PROFISSA_API_URL"), "http://localhost:8080"), "/"),
		SessionFile:  fallback(os.Getenv("PROFISSA_SESSION_FILE"), home+"/.profissa/session.json"),
		SessionRedis: strings.TrimSpace(os.Getenv("PROFISSA_SESSION_REDIS_URL")),
		PollInterval: time.Duration(positiveInt(os.Getenv("PROFISSA_SESSION_POLL_MS"), 500)) * time.Millisecond,
		LogFile:      fallback(os.Getenv("PROFISSA_LOG_FILE"), "profissa.log"),
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func positiveFloat(value string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
