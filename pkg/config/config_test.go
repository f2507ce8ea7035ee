package config

import (
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"CACHE_TYPE", "CACHE_KEY_PREFIX", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"MEMORY_CACHE_EXPIRATION", "MEMORY_CACHE_CLEANUP", "SQLITE_PATH",
	"REFRESH_TIMER", "REFRESH_BATCH_SIZE", "REFRESH_MAX_CONSECUTIVE_SKIPS", "REFRESH_TTL",
	"REFRESH_COOLDOWN", "REFRESH_JITTER_MIN", "REFRESH_JITTER_MAX", "REFRESH_IDLE_FALLBACK",
	"REFRESH_REGENERATIONS_PER_SECOND", "REFRESH_QUEUE_SIZE",
	"DECK_API_URL", "RENDER_URL", "UPSTREAM_RPS", "UPSTREAM_BURST", "UPSTREAM_TIMEOUT",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"PORT", "API_RATE_LIMIT", "API_RATE_WINDOW",
}

// clearEnv blanks every variable the loader reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Cache.Type != CacheTypeMemory {
		t.Errorf("Cache.Type = %v, want %v", cfg.Cache.Type, CacheTypeMemory)
	}
	if cfg.Refresh.Interval != time.Hour {
		t.Errorf("Refresh.Interval = %v, want %v", cfg.Refresh.Interval, time.Hour)
	}
	if cfg.Refresh.BatchSize != 50 || cfg.Refresh.MaxConsecutiveSkips != 5 {
		t.Errorf("batch/skips = %d/%d, want 50/5", cfg.Refresh.BatchSize, cfg.Refresh.MaxConsecutiveSkips)
	}
	if cfg.Refresh.TTL != 7*24*time.Hour || cfg.Refresh.Cooldown != 24*time.Hour {
		t.Errorf("ttl/cooldown = %v/%v", cfg.Refresh.TTL, cfg.Refresh.Cooldown)
	}
	if cfg.Refresh.JitterMin != 500*time.Millisecond || cfg.Refresh.JitterMax != 2*time.Second {
		t.Errorf("jitter = %v..%v", cfg.Refresh.JitterMin, cfg.Refresh.JitterMax)
	}
	if cfg.Refresh.IdleFallback != 200*time.Millisecond {
		t.Errorf("IdleFallback = %v", cfg.Refresh.IdleFallback)
	}
	if cfg.Server.Port != "8000" || cfg.Server.RateLimit != 100 || cfg.Server.RateWindow != time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log = %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "refresh timer as seconds",
			envVars: map[string]string{"REFRESH_TIMER": "300"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Refresh.Interval != 5*time.Minute {
					t.Errorf("Interval = %v, want 5m", cfg.Refresh.Interval)
				}
			},
		},
		{
			name:    "refresh timer as duration string",
			envVars: map[string]string{"REFRESH_TIMER": "90m"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Refresh.Interval != 90*time.Minute {
					t.Errorf("Interval = %v, want 90m", cfg.Refresh.Interval)
				}
			},
		},
		{
			name:    "invalid refresh timer keeps default",
			envVars: map[string]string{"REFRESH_TIMER": "not-a-number"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Refresh.Interval != time.Hour {
					t.Errorf("Interval = %v, want default", cfg.Refresh.Interval)
				}
			},
		},
		{
			name: "sqlite substrate",
			envVars: map[string]string{
				"CACHE_TYPE":  "SQLite",
				"SQLITE_PATH": "/tmp/decks.db",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Type != CacheTypeSQLite || cfg.Cache.SQLite.Path != "/tmp/decks.db" {
					t.Errorf("Cache = %+v", cfg.Cache)
				}
			},
		},
		{
			name: "upstream settings",
			envVars: map[string]string{
				"DECK_API_URL": "https://decks.example.com/",
				"UPSTREAM_RPS": "0.5",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Upstream.DeckBaseURL != "https://decks.example.com" {
					t.Errorf("DeckBaseURL = %s, trailing slash should be trimmed", cfg.Upstream.DeckBaseURL)
				}
				if cfg.Upstream.RequestsPerSecond != 0.5 {
					t.Errorf("RequestsPerSecond = %v", cfg.Upstream.RequestsPerSecond)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8000", RateLimit: 100, RateWindow: time.Minute},
		Cache:  CacheConfig{Type: CacheTypeMemory},
		Refresh: RefreshConfig{
			Interval:            time.Minute,
			BatchSize:           50,
			MaxConsecutiveSkips: 5,
			TTL:                 7 * 24 * time.Hour,
			Cooldown:            24 * time.Hour,
			JitterMin:           500 * time.Millisecond,
			JitterMax:           2 * time.Second,
		},
		Upstream: UpstreamConfig{DeckBaseURL: "http://localhost:8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid cache type",
			mutate:  func(c *Config) { c.Cache.Type = "invalid" },
			wantErr: true,
			errMsg:  "cache type must be one of",
		},
		{
			name: "redis type with empty address",
			mutate: func(c *Config) {
				c.Cache.Type = CacheTypeRedis
				c.Cache.Redis.Address = ""
			},
			wantErr: true,
			errMsg:  "redis address cannot be empty when using redis cache",
		},
		{
			name: "redisjson shares redis settings",
			mutate: func(c *Config) {
				c.Cache.Type = CacheTypeRedisJSON
				c.Cache.Redis.Address = "localhost:6379"
			},
			wantErr: false,
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Cache.Type = CacheTypeSQLite },
			wantErr: true,
			errMsg:  "sqlite path cannot be empty",
		},
		{
			name:    "refresh timer less than 1 second",
			mutate:  func(c *Config) { c.Refresh.Interval = 0 },
			wantErr: true,
			errMsg:  "refresh timer must be at least 1 second",
		},
		{
			name:    "inverted jitter",
			mutate:  func(c *Config) { c.Refresh.JitterMax = time.Millisecond },
			wantErr: true,
			errMsg:  "jitter bounds",
		},
		{
			name:    "missing deck api url",
			mutate:  func(c *Config) { c.Upstream.DeckBaseURL = "" },
			wantErr: true,
			errMsg:  "deck api url cannot be empty",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = "invalid" },
			wantErr: true,
			errMsg:  "invalid port",
		},
		{
			name:    "empty port disables api",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: false,
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.Server.RateLimit = 10
				c.Server.RateWindow = 0
			},
			wantErr: true,
			errMsg:  "api rate limit",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}
