package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultOpenRouterURL is the chat completion endpoint used when OPENROUTER_URL is unset
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// DefaultSecretKey signs flash cookies when SECRET_KEY is unset
const DefaultSecretKey = "dev-secret"

// Config holds all configuration for the contract service.
// It is built once at startup and never mutated afterwards.
type Config struct {
	// Server
	Port        string
	Environment string

	// Generation backend
	OpenRouterAPIKey   string
	OpenRouterURL      string
	Referer            string
	AppTitle           string
	GenerationTimeout  time.Duration
	MaxTokens          int
	DefaultTemperature float64

	// Model catalog file (.json, .yaml or .yml)
	ModelsPath string

	// Security
	SecretKey string

	// Telemetry
	OTLPEndpoint string
}

// IsProduction reports whether the service runs with GO_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasCredential reports whether an OpenRouter API key was configured
func (c *Config) HasCredential() bool {
	return c.OpenRouterAPIKey != ""
}

// Load reads configuration from environment variables. Values found in a
// .env file in the working directory are applied first; variables already
// present in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only
func FromEnv() (*Config, error) {
	timeout, err := getDuration("GENERATION_TIMEOUT", 180*time.Second)
	if err != nil {
		return nil, err
	}
	maxTokens, err := getInt("MAX_TOKENS", 1600)
	if err != nil {
		return nil, err
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("MAX_TOKENS must be positive, got %d", maxTokens)
	}
	temperature, err := getFloat("DEFAULT_TEMPERATURE", 0.4)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               getEnv("PORT", "5000"),
		Environment:        getEnv("GO_ENV", "development"),
		OpenRouterAPIKey:   strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterURL:      getEnv("OPENROUTER_URL", DefaultOpenRouterURL),
		Referer:            getEnv("APP_REFERER", "http://localhost"),
		AppTitle:           getEnv("APP_TITLE", "Contract-UI"),
		GenerationTimeout:  timeout,
		MaxTokens:          maxTokens,
		DefaultTemperature: temperature,
		ModelsPath:         getEnv("MODELS_JSON", "models.json"),
		SecretKey:          getEnv("SECRET_KEY", DefaultSecretKey),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
