package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database kinds accepted by DATABASE_TYPE.
const (
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

var defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:8000"}

// Config holds runtime configuration sourced from env vars.
// It is built once at startup and never mutated afterwards.
type Config struct {
	ProjectName    string
	Version        string
	Port           string
	DatabaseType   string
	DatabaseURL    string
	SecretKey      string
	Algorithm      string
	AccessTokenTTL time.Duration
	CORSOrigins    []string
	RequireActive  bool
	LogFormat      string
	LogLevel       string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		ProjectName:  fallback(os.Getenv("PROJECT_NAME"), "userhub"),
		Version:      fallback(os.Getenv("VERSION"), "0.1.0"),
		Port:         fallback(os.Getenv("PORT"), "8080"),
		DatabaseType: strings.ToLower(fallback(os.Getenv("DATABASE_TYPE"), DatabasePostgres)),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SecretKey:    strings.TrimSpace(os.Getenv("SECRET_KEY")),
		Algorithm:    strings.ToUpper(fallback(os.Getenv("ALGORITHM"), "HS256")),
		CORSOrigins:  ParseOrigins(os.Getenv("CORS_ORIGINS")),
		LogFormat:    strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "json")),
		LogLevel:     strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
	}

	minutes := fallback(os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"), "30")
	ttlMinutes, err := strconv.Atoi(minutes)
	if err != nil || ttlMinutes <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", minutes)
	}
	cfg.AccessTokenTTL = time.Duration(ttlMinutes) * time.Minute

	requireActive := fallback(os.Getenv("AUTH_REQUIRE_ACTIVE"), "true")
	cfg.RequireActive, err = strconv.ParseBool(requireActive)
	if err != nil {
		return Config{}, fmt.Errorf("AUTH_REQUIRE_ACTIVE must be a boolean, got %q", requireActive)
	}

	switch cfg.DatabaseType {
	case DatabasePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// ParseOrigins accepts a JSON array of origins. Any other non-empty value is
// treated as a single origin.
func ParseOrigins(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return append([]string(nil), defaultCORSOrigins...)
	}

	var origins []string
	if err := json.Unmarshal([]byte(input), &origins); err != nil {
		return []string{input}
	}

	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
