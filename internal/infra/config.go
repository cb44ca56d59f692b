package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents toolkit configuration loaded from environment variables.
type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	RenderAPIKey    string
	RenderAPISecret string
	RenderBaseURL   string
	OutputDir       string

	// Generation pacing. PollInterval separates status checks, MaxWait bounds
	// a single job, Throttle separates sequential remote submissions.
	PollInterval time.Duration
	MaxWait      time.Duration
	Throttle     time.Duration

	RequestTimeout   time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Per-command requirements (render credentials,
// database) are enforced by the Require* helpers so each binary only demands
// what it actually uses.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RenderAPIKey:     os.Getenv("RENDER_API_KEY"),
		RenderAPISecret:  os.Getenv("RENDER_API_SECRET"),
		RenderBaseURL:    getEnv("RENDER_BASE_URL", "https://api.glyphforge.io/v1"),
		OutputDir:        getEnv("OUTPUT_DIR", "./generated"),
		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		MaxWait:          time.Second * time.Duration(getEnvInt("MAX_WAIT_SECONDS", 300)),
		Throttle:         time.Second * time.Duration(getEnvInt("THROTTLE_SECONDS", 3)),
		RequestTimeout:   time.Second * time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 45)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.MaxWait <= 0 {
		return nil, fmt.Errorf("MAX_WAIT_SECONDS must be positive")
	}
	if cfg.Throttle < 0 {
		return nil, fmt.Errorf("THROTTLE_SECONDS must not be negative")
	}

	return cfg, nil
}

// RequireRenderCredentials ensures the API key pair is present for commands
// that talk to the remote render service.
func (c *Config) RequireRenderCredentials() error {
	if c.RenderAPIKey == "" {
		return fmt.Errorf("RENDER_API_KEY is required")
	}
	if c.RenderAPISecret == "" {
		return fmt.Errorf("RENDER_API_SECRET is required")
	}
	return nil
}

// RequireDatabase ensures DATABASE_URL is present for commands that use the
// report archive.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
