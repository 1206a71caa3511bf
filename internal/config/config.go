// Package config provides configuration management for the YouTrack MCP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the MCP server
type Config struct {
	// YouTrack Instance Configuration
	BaseURL        string `json:"base_url"`
	APIToken       string `json:"api_token,omitempty"` // Not stored in files, from env only
	DefaultProject string `json:"default_project"`     // Project key used to expand bare issue numbers
	CloudInstance  bool   `json:"cloud_instance"`      // True for *.youtrack.cloud hosted instances

	// HTTP Client Configuration
	Timeout         time.Duration `json:"timeout"`
	MaxRetries      int           `json:"max_retries"`
	RetryWaitMin    time.Duration `json:"retry_wait_min"`
	RetryWaitMax    time.Duration `json:"retry_wait_max"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout"`

	// Rate Limiting
	RateLimit       int  `json:"rate_limit"`       // requests per second
	RateLimitBurst  int  `json:"rate_limit_burst"` // burst size
	EnableRateLimit bool `json:"enable_rate_limit"`

	// Security
	TLSVerify bool `json:"tls_verify"` // Disable only for self-hosted instances with self-signed certs

	// Observability
	EnableTracing  bool `json:"enable_tracing"`
	EnableAuditLog bool `json:"enable_audit_log"`
	EnableCache    bool `json:"enable_cache"`

	// Health / Metrics HTTP endpoint
	EnableHealthServer bool   `json:"enable_health_server"`
	HealthPort         int    `json:"health_port"`
	HealthBindAddr     string `json:"health_bind_addr"`
	EnableMetrics      bool   `json:"enable_metrics"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // json or console
}

// Load configuration from environment variables and config file
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    1 * time.Second,
		RetryWaitMax:    30 * time.Second,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
		RateLimit:       10,
		RateLimitBurst:  20,
		EnableRateLimit: true,
		TLSVerify:       true,
		LogLevel:        "info",
		LogFormat:       "json",
		// Observability defaults
		EnableTracing:  false,
		EnableAuditLog: true,
		EnableCache:    true,
		// The health server binds a port, which stdio servers usually
		// should not do unless deployed behind an orchestrator.
		EnableHealthServer: false,
		HealthPort:         8080,
		HealthBindAddr:     "127.0.0.1",
		EnableMetrics:      true,
	}

	// Try to load from config file if specified
	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables (these take precedence)
	loadFromEnv(cfg)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	cleanPath := filepath.Clean(path)

	// Prevent path traversal by checking for ".." components
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: path traversal detected")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return json.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("YOUTRACK_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("YOUTRACK_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("YOUTRACK_DEFAULT_PROJECT"); v != "" {
		cfg.DefaultProject = v
	}
	if v := os.Getenv("YOUTRACK_CLOUD"); v != "" {
		cfg.CloudInstance = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("YOUTRACK_MAX_RETRIES"); v != "" {
		var retries int
		if _, err := fmt.Sscanf(v, "%d", &retries); err == nil {
			cfg.MaxRetries = retries
		}
	}
	if v := os.Getenv("YOUTRACK_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryWaitMin = d
		}
	}
	if v := os.Getenv("YOUTRACK_RETRY_DELAY_MAX"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryWaitMax = d
		}
	}
	if v := os.Getenv("YOUTRACK_RATE_LIMIT"); v != "" {
		var limit int
		if _, err := fmt.Sscanf(v, "%d", &limit); err == nil {
			cfg.RateLimit = limit
		}
	}
	if v := os.Getenv("YOUTRACK_RATE_LIMIT_BURST"); v != "" {
		var burst int
		if _, err := fmt.Sscanf(v, "%d", &burst); err == nil {
			cfg.RateLimitBurst = burst
		}
	}
	if v := os.Getenv("YOUTRACK_ENABLE_RATE_LIMIT"); v != "" {
		cfg.EnableRateLimit = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_VERIFY_SSL"); v != "" {
		cfg.TLSVerify = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_ENABLE_TRACING"); v != "" {
		cfg.EnableTracing = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_ENABLE_AUDIT_LOG"); v != "" {
		cfg.EnableAuditLog = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_ENABLE_CACHE"); v != "" {
		cfg.EnableCache = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_HEALTH_SERVER"); v != "" {
		cfg.EnableHealthServer = parseBool(v)
	}
	if v := os.Getenv("YOUTRACK_HEALTH_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.HealthPort = port
		}
	}
	if v := os.Getenv("YOUTRACK_HEALTH_BIND"); v != "" {
		cfg.HealthBindAddr = v
	}
	if v := os.Getenv("YOUTRACK_ENABLE_METRICS"); v != "" {
		cfg.EnableMetrics = parseBool(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("YOUTRACK_URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("YOUTRACK_URL must start with http:// or https://, got %q", c.BaseURL)
	}
	if c.APIToken == "" {
		return errors.New("YOUTRACK_API_TOKEN is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	if c.RateLimit <= 0 && c.EnableRateLimit {
		return errors.New("rate_limit must be positive when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// APIBaseURL returns the REST API root for the configured instance.
func (c *Config) APIBaseURL() string {
	return c.BaseURL + "/api"
}

// Redact returns a copy of the config with sensitive data removed
func (c *Config) Redact() *Config {
	redacted := *c
	redacted.APIToken = MaskToken(redacted.APIToken)
	return &redacted
}

// MaskToken returns a masked version of a permanent token for safe logging
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
