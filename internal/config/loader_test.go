package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Address != ":8080" {
		t.Errorf("server address = %q, want :8080", cfg.Server.Address)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("rate limit = (%v, %d), want (true, 60)", cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerMinute)
	}
	if !reflect.DeepEqual(cfg.Security.AllowedOrigins, []string{"*"}) {
		t.Errorf("allowed origins = %v, want [*]", cfg.Security.AllowedOrigins)
	}
	if len(cfg.Security.BlockedDomains) != 0 {
		t.Errorf("blocked domains = %v, want empty", cfg.Security.BlockedDomains)
	}
	if !cfg.Cache.Enabled || cfg.Cache.MaxAgeSeconds != 300 {
		t.Errorf("cache = (%v, %d), want (true, 300)", cfg.Cache.Enabled, cfg.Cache.MaxAgeSeconds)
	}
	if cfg.Store.Type != "memory" {
		t.Errorf("store type = %q, want memory", cfg.Store.Type)
	}

	if err := validate(cfg); err != nil {
		t.Errorf("default configuration failed validation: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("Load without file should return defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load with missing file should fail")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want missing file mention", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	content := `
server:
  address: ":9090"
  read_timeout: 15s
rate_limit:
  enabled: true
  requests_per_minute: 120
security:
  allowed_origins:
    - "https://app.example.com"
  blocked_domains:
    - "internal.example.com"
cache:
  enabled: false
store:
  type: redis
  address: "redis.example.com:6379"
  key_prefix: "ninja"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Errorf("server address = %q, want :9090", cfg.Server.Address)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("read timeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("requests per minute = %d, want 120", cfg.RateLimit.RequestsPerMinute)
	}
	if !reflect.DeepEqual(cfg.Security.AllowedOrigins, []string{"https://app.example.com"}) {
		t.Errorf("allowed origins = %v", cfg.Security.AllowedOrigins)
	}
	if !reflect.DeepEqual(cfg.Security.BlockedDomains, []string{"internal.example.com"}) {
		t.Errorf("blocked domains = %v", cfg.Security.BlockedDomains)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled")
	}
	if cfg.Store.Type != "redis" || cfg.Store.Address != "redis.example.com:6379" {
		t.Errorf("store = (%q, %q)", cfg.Store.Type, cfg.Store.Address)
	}
	if cfg.Store.KeyPrefix != "ninja" {
		t.Errorf("key prefix = %q, want ninja", cfg.Store.KeyPrefix)
	}

	// Values the file does not mention keep their defaults.
	if cfg.Monitoring.LogLevel != "info" {
		t.Errorf("log level = %q, want default info", cfg.Monitoring.LogLevel)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load with malformed YAML should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CORS_NINJA_SERVER_ADDRESS", ":7070")
	t.Setenv("CORS_NINJA_RATE_LIMIT_ENABLED", "false")
	t.Setenv("CORS_NINJA_REQUESTS_PER_MINUTE", "30")
	t.Setenv("CORS_NINJA_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("CORS_NINJA_BLOCKED_DOMAINS", "bad.example.com")
	t.Setenv("CORS_NINJA_STORE_TYPE", "redis")
	t.Setenv("CORS_NINJA_REDIS_ADDRESS", "env-redis:6379")
	t.Setenv("CORS_NINJA_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":7070" {
		t.Errorf("server address = %q, want :7070", cfg.Server.Address)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled")
	}
	if cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("requests per minute = %d, want 30", cfg.RateLimit.RequestsPerMinute)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Security.AllowedOrigins, want) {
		t.Errorf("allowed origins = %v, want %v", cfg.Security.AllowedOrigins, want)
	}
	if !reflect.DeepEqual(cfg.Security.BlockedDomains, []string{"bad.example.com"}) {
		t.Errorf("blocked domains = %v", cfg.Security.BlockedDomains)
	}
	if cfg.Store.Type != "redis" || cfg.Store.Address != "env-redis:6379" {
		t.Errorf("store = (%q, %q)", cfg.Store.Type, cfg.Store.Address)
	}
	if cfg.Monitoring.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Monitoring.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  address: \":9090\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CORS_NINJA_SERVER_ADDRESS", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("server address = %q, environment should win over file", cfg.Server.Address)
	}
}

func TestEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad rate limit flag", "CORS_NINJA_RATE_LIMIT_ENABLED", "maybe"},
		{"bad requests per minute", "CORS_NINJA_REQUESTS_PER_MINUTE", "sixty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("Load with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty server address",
			mutate:  func(c *Config) { c.Server.Address = "" },
			wantErr: true,
		},
		{
			name:    "zero requests per minute with limiting enabled",
			mutate:  func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			wantErr: true,
		},
		{
			name: "zero requests per minute with limiting disabled",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = false
				c.RateLimit.RequestsPerMinute = 0
			},
		},
		{
			name:    "negative cache age",
			mutate:  func(c *Config) { c.Cache.MaxAgeSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "unknown store type",
			mutate:  func(c *Config) { c.Store.Type = "etcd" },
			wantErr: true,
		},
		{
			name: "redis store without address",
			mutate: func(c *Config) {
				c.Store.Type = "redis"
				c.Store.Address = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Monitoring.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b", []string{"a", "b"}},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		if got := splitList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
