package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harshraj001/cors-ninja/pkg/store"
)

// Load loads configuration from file with environment variable overrides.
// Precedence: compiled-in defaults, then the YAML file (if it exists), then
// CORS_NINJA_* environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the compiled-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1048576,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
		},
		Security: SecurityConfig{
			AllowedOrigins:          []string{"*"},
			BlockedDomains:          []string{},
			EnabledHeaderValidation: true,
			EnabledURLValidation:    true,
		},
		Cache: CacheConfig{
			Enabled:       true,
			MaxAgeSeconds: 300,
		},
		Monitoring: MonitoringConfig{
			Enabled:  true,
			LogLevel: "info",
		},
		Store: store.Config{
			Type:      "memory",
			Address:   "localhost:6379",
			Database:  0,
			Timeout:   5 * time.Second,
			KeyPrefix: "",
		},
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if addr := os.Getenv("CORS_NINJA_SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}

	if enabled := os.Getenv("CORS_NINJA_RATE_LIMIT_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid CORS_NINJA_RATE_LIMIT_ENABLED: %w", err)
		}
		cfg.RateLimit.Enabled = v
	}
	if rpm := os.Getenv("CORS_NINJA_REQUESTS_PER_MINUTE"); rpm != "" {
		v, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid CORS_NINJA_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.RateLimit.RequestsPerMinute = v
	}

	if origins := os.Getenv("CORS_NINJA_ALLOWED_ORIGINS"); origins != "" {
		cfg.Security.AllowedOrigins = splitList(origins)
	}
	if domains := os.Getenv("CORS_NINJA_BLOCKED_DOMAINS"); domains != "" {
		cfg.Security.BlockedDomains = splitList(domains)
	}

	if storeType := os.Getenv("CORS_NINJA_STORE_TYPE"); storeType != "" {
		cfg.Store.Type = storeType
	}
	if addr := os.Getenv("CORS_NINJA_REDIS_ADDRESS"); addr != "" {
		cfg.Store.Address = addr
	}
	if password := os.Getenv("CORS_NINJA_REDIS_PASSWORD"); password != "" {
		cfg.Store.Password = password
	}

	if logLevel := os.Getenv("CORS_NINJA_LOG_LEVEL"); logLevel != "" {
		cfg.Monitoring.LogLevel = logLevel
	}

	return nil
}

// splitList splits a comma-separated environment value into trimmed entries
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive when rate limiting is enabled")
	}

	if cfg.Cache.Enabled && cfg.Cache.MaxAgeSeconds < 0 {
		return fmt.Errorf("cache max age cannot be negative")
	}

	validStoreTypes := map[string]bool{
		"memory": true,
		"redis":  true,
	}
	if !validStoreTypes[cfg.Store.Type] {
		return fmt.Errorf("invalid store type: %s", cfg.Store.Type)
	}
	if cfg.Store.Type == "redis" && cfg.Store.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Monitoring.LogLevel] {
		return fmt.Errorf("invalid log level: %s", cfg.Monitoring.LogLevel)
	}

	return nil
}
