package config

import (
	"time"

	"github.com/harshraj001/cors-ninja/pkg/store"
)

// Config represents the complete configuration structure.
// It is constructed once at startup and treated as read-only afterwards;
// every component receives it (or a sub-config) by pointer.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" json:"rateLimit"`
	Security   SecurityConfig   `yaml:"security" json:"security"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring" json:"monitoring"`
	Store      store.Config     `yaml:"store" json:"store"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Address        string        `yaml:"address" json:"address"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idleTimeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" json:"maxHeaderBytes"`
}

// RateLimitConfig represents the per-client sliding-window rate limit settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" json:"requestsPerMinute"`
}

// SecurityConfig represents origin allow-listing and destination blocking settings
type SecurityConfig struct {
	// AllowedOrigins is the origin allow-list. The entry "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowedOrigins"`

	// BlockedDomains lists destination hostnames that must not be proxied to.
	// An entry blocks the exact hostname and all of its subdomains.
	BlockedDomains []string `yaml:"blocked_domains" json:"blockedDomains"`

	// EnabledHeaderValidation is accepted for configuration-surface parity
	// but is not consulted by the proxy flow.
	EnabledHeaderValidation bool `yaml:"enabled_header_validation" json:"enabledHeaderValidation"`

	EnabledURLValidation bool `yaml:"enabled_url_validation" json:"enabledUrlValidation"`
}

// CacheConfig controls the Cache-Control header written on proxied responses
type CacheConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	MaxAgeSeconds int  `yaml:"max_age_seconds" json:"maxAgeSeconds"`
}

// MonitoringConfig represents logging and metrics settings
type MonitoringConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	LogLevel string `yaml:"log_level" json:"logLevel"`
}
