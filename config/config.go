// Package config loads gateway configuration from the environment.
// A local .env file is honored in development; real deployments set
// the variables directly.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the storefront gateway.
type Config struct {
	Service   ServiceConfig
	Backend   BackendConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	ShutdownTimeoutSeconds     int
	ReadinessDrainDelaySeconds int
}

// ServiceConfig identifies this process.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// BackendConfig describes the upstream commerce API.
type BackendConfig struct {
	// BaseURL is the backend origin including the API prefix,
	// e.g. https://api.example.com/api/v1.
	BaseURL string

	// CookiePath is the Path attribute the backend sets on its cookies.
	// The proxy rewrites it to "/" so cookies bind to the storefront host.
	CookiePath string

	TimeoutSeconds int
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from the environment.
func Load() *Config {
	// Best-effort: absence of .env is normal outside development.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "storefront-gateway"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "3000"),
		},
		Backend: BackendConfig{
			BaseURL:        os.Getenv("API_BASE_URL"),
			CookiePath:     getEnv("API_COOKIE_PATH", "/api/v1"),
			TimeoutSeconds: getEnvInt("API_TIMEOUT_SECONDS", 30),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		ShutdownTimeoutSeconds:     getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15),
		ReadinessDrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
	}
}

// Validate checks that required settings are present and well-formed.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if c.Service.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0, 1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to keep serving after
// readiness starts failing, so load balancers can drain traffic.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelaySeconds) * time.Second
}

// GetBackendTimeoutDuration returns the upstream request timeout.
func (c *Config) GetBackendTimeoutDuration() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
