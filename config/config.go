package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Oxylabs   OxylabsConfig
	Zyte      ZyteConfig
	Extract   ExtractConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Batch     BatchConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// OxylabsConfig holds credentials and tuning for the Oxylabs realtime API.
type OxylabsConfig struct {
	// Endpoint is the realtime API URL.
	Endpoint string // default: "https://realtime.oxylabs.io/v1/queries"

	// Username and Password authenticate against the realtime API.
	Username string
	Password string

	// GeoLocation is the geo_location sent with every query.
	GeoLocation string // default: "United States"

	// Timeout is the end-to-end deadline for one remote render.
	Timeout time.Duration // default: 120s
}

// ZyteConfig holds credentials and tuning for the Zyte API.
type ZyteConfig struct {
	// Endpoint is the extraction API URL.
	Endpoint string // default: "https://api.zyte.com/v1/extract"

	// APIKey authenticates against the API (basic auth username).
	APIKey string

	// Timeout is the end-to-end deadline for one remote render.
	Timeout time.Duration // default: 45s
}

// ExtractConfig controls the extraction pipeline.
type ExtractConfig struct {
	// Fallback selects the generic extractor used when the selector
	// cascade finds nothing. "trafilatura" or "readability".
	Fallback string // default: "trafilatura"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the extraction response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// BatchConfig controls batch extraction jobs.
type BatchConfig struct {
	// Concurrency is the number of URLs extracted in parallel per job.
	Concurrency int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("LONGFORM_HOST", "0.0.0.0"),
			Port: envIntOr("LONGFORM_PORT", 8080),
			Mode: envOr("LONGFORM_MODE", "release"),
		},
		Oxylabs: OxylabsConfig{
			Endpoint:    envOr("LONGFORM_OXYLABS_ENDPOINT", "https://realtime.oxylabs.io/v1/queries"),
			Username:    os.Getenv("LONGFORM_OXYLABS_USERNAME"),
			Password:    os.Getenv("LONGFORM_OXYLABS_PASSWORD"),
			GeoLocation: envOr("LONGFORM_OXYLABS_GEO", "United States"),
			Timeout:     envDurationOr("LONGFORM_OXYLABS_TIMEOUT", 120*time.Second),
		},
		Zyte: ZyteConfig{
			Endpoint: envOr("LONGFORM_ZYTE_ENDPOINT", "https://api.zyte.com/v1/extract"),
			APIKey:   os.Getenv("LONGFORM_ZYTE_API_KEY"),
			Timeout:  envDurationOr("LONGFORM_ZYTE_TIMEOUT", 45*time.Second),
		},
		Extract: ExtractConfig{
			Fallback: envOr("LONGFORM_FALLBACK", "trafilatura"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("LONGFORM_AUTH_ENABLED", true),
			APIKeys: envSliceOr("LONGFORM_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LONGFORM_RATE_RPS", 5.0),
			Burst:             envIntOr("LONGFORM_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LONGFORM_CACHE_MAX_ENTRIES", 1000),
		},
		Batch: BatchConfig{
			Concurrency: envIntOr("LONGFORM_BATCH_CONCURRENCY", 5),
		},
		Log: LogConfig{
			Level:  envOr("LONGFORM_LOG_LEVEL", "info"),
			Format: envOr("LONGFORM_LOG_FORMAT", "json"),
		},
	}
}

// Validate checks enumerations and ranges that would otherwise fail at
// request time. Called once at startup.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: invalid server mode %q", c.Server.Mode)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	switch c.Extract.Fallback {
	case "trafilatura", "readability":
	default:
		return fmt.Errorf("config: invalid fallback extractor %q", c.Extract.Fallback)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Log.Format)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("config: invalid rate limit (rps=%v burst=%d)",
			c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: invalid batch concurrency %d", c.Batch.Concurrency)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
