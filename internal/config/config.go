// Package config provides application configuration management.
// It loads settings from environment variables (optionally through a .env
// file) and validates them per run mode.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidationMode selects which settings are required.
type ValidationMode int

const (
	// ServerMode validates everything the HTTP server needs.
	ServerMode ValidationMode = iota
	// ImportMode validates only what the dataset importer needs.
	ImportMode
)

// Match policy names.
const (
	PolicyWeighted = "weighted"
	PolicyEqual    = "equal"
)

// LLM provider names.
const (
	ProviderGemini   = "gemini"
	ProviderGroq     = "groq"
	ProviderCerebras = "cerebras"
	ProviderOpenAI   = "openai"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	InstanceID      string

	// Data Configuration
	DataDir     string // Directory holding the SQLite dataset cache
	DatasetPath string // Local CSV (or .csv.zst) used when neither SQLite nor R2 has data

	// Matching
	MatchPolicy string // "weighted" (default) or "equal"
	MatchLimit  int    // Maximum matches returned per recommendation

	// Chat
	HistoryWindow  int // Number of past exchanges folded into a chat prompt
	MaxQueryLength int // Queries longer than this are rejected (runes)

	LLM LLMConfig

	// Rate Limits (per user, LLM-backed operations only)
	LLMRateBurst   float64
	LLMRatePerHour float64

	R2 R2Config

	Sentry SentryConfig

	BetterStack BetterStackConfig

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider       string
	Model          string // empty = provider default
	Timeout        time.Duration
	Temperature    float64
	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string
	OpenAIAPIKey   string
	OpenAIBaseURL  string // empty = api.openai.com
}

// APIKey returns the key for the selected provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderCerebras:
		return c.CerebrasAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	}
	return ""
}

// R2Config points at an optional remote copy of the dataset.
type R2Config struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	DatasetKey      string
}

// Endpoint returns the S3-compatible endpoint for the account.
func (c R2Config) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// SentryConfig configures error tracking.
type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// BetterStackConfig configures remote log shipping.
type BetterStackConfig struct {
	Enabled  bool
	Token    string
	Endpoint string
}

// Load reads server configuration from environment variables.
func Load() (*Config, error) {
	return LoadForMode(ServerMode)
}

// LoadForMode reads configuration and validates it for the given mode.
// It attempts to load a .env file first, then reads from env vars.
func LoadForMode(mode ValidationMode) (*Config, error) {
	// Ignore the error: a missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, ""),
		InstanceID:      getEnv(EnvInstanceID, ""),

		DataDir:     getEnv(EnvDataDir, getDefaultDataDir()),
		DatasetPath: getEnv(EnvDatasetPath, filepath.Join("data", "universities.csv")),

		MatchPolicy: strings.ToLower(getEnv(EnvMatchPolicy, PolicyWeighted)),
		MatchLimit:  getIntEnv(EnvMatchLimit, 5),

		HistoryWindow:  getIntEnv(EnvHistoryWindow, 5),
		MaxQueryLength: getIntEnv(EnvMaxQueryLength, 2000),

		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv(EnvLLMProvider, ProviderOpenAI)),
			Model:          getEnv(EnvLLMModel, ""),
			Timeout:        getDurationEnv(EnvLLMTimeout, LLMRequest),
			Temperature:    getFloatEnv(EnvLLMTemperature, 0.7),
			GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),
			GroqAPIKey:     getEnv(EnvGroqAPIKey, ""),
			CerebrasAPIKey: getEnv(EnvCerebrasAPIKey, ""),
			OpenAIAPIKey:   getEnv(EnvOpenAIAPIKey, ""),
			OpenAIBaseURL:  getEnv(EnvOpenAIBaseURL, ""),
		},

		LLMRateBurst:   getFloatEnv(EnvLLMRateBurst, 10),
		LLMRatePerHour: getFloatEnv(EnvLLMRatePerHour, 60),

		R2: R2Config{
			Enabled:         getBoolEnv(EnvR2Enabled, false),
			AccountID:       getEnv(EnvR2AccountID, ""),
			AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			BucketName:      getEnv(EnvR2BucketName, ""),
			DatasetKey:      getEnv(EnvR2DatasetKey, "datasets/universities.csv.zst"),
		},

		Sentry: SentryConfig{
			Enabled:     getBoolEnv(EnvSentryEnabled, false),
			DSN:         getEnv(EnvSentryDSN, ""),
			Environment: getEnv(EnvSentryEnvironment, "production"),
			Release:     getEnv(EnvSentryRelease, ""),
			SampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
		},

		BetterStack: BetterStackConfig{
			Enabled:  getBoolEnv(EnvBetterStackEnabled, false),
			Token:    getEnv(EnvBetterStackToken, ""),
			Endpoint: getEnv(EnvBetterStackEndpoint, ""),
		},

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.ValidateForMode(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks server-mode requirements.
func (c *Config) Validate() error {
	return c.ValidateForMode(ServerMode)
}

// ValidateForMode checks that required configuration values are set.
// All problems are reported together.
func (c *Config) ValidateForMode(mode ValidationMode) error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.R2.Enabled {
		if c.R2.AccountID == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" || c.R2.BucketName == "" {
			errs = append(errs, errors.New("R2 is enabled but account, credentials, or bucket is missing"))
		}
		if c.R2.DatasetKey == "" {
			errs = append(errs, fmt.Errorf("%s is required when R2 is enabled", EnvR2DatasetKey))
		}
	}

	if mode == ServerMode {
		if c.Port == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvPort))
		}
		switch c.MatchPolicy {
		case PolicyWeighted, PolicyEqual:
		default:
			errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvMatchPolicy, PolicyWeighted, PolicyEqual, c.MatchPolicy))
		}
		if c.MatchLimit <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMatchLimit, c.MatchLimit))
		}
		if c.HistoryWindow < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvHistoryWindow, c.HistoryWindow))
		}
		if c.MaxQueryLength <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxQueryLength, c.MaxQueryLength))
		}
		switch c.LLM.Provider {
		case ProviderGemini, ProviderGroq, ProviderCerebras, ProviderOpenAI:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown provider %q", EnvLLMProvider, c.LLM.Provider))
		}
		if c.LLM.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMTimeout, c.LLM.Timeout))
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 2], got %v", EnvLLMTemperature, c.LLM.Temperature))
		}
		if c.LLMRateBurst < 0 || c.LLMRatePerHour < 0 {
			errs = append(errs, errors.New("LLM rate limits cannot be negative"))
		}
		if c.Sentry.Enabled && c.Sentry.DSN == "" {
			errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryDSN))
		}
		if c.BetterStack.Enabled && c.BetterStack.Token == "" {
			errs = append(errs, fmt.Errorf("%s is required when Better Stack is enabled", EnvBetterStackToken))
		}
		if c.MetricsAuthEnabled && c.MetricsPassword == "" {
			errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite dataset cache
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "advisor.db")
}

// HasLLMProvider reports whether the selected provider has credentials.
func (c *Config) HasLLMProvider() bool {
	return c.LLM.APIKey() != ""
}
