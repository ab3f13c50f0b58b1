package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for endpoints without their own configuration.
const (
	DefaultRate            = 10.0
	DefaultBurst           = 20
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTimeout     = time.Hour
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     float64 // Tokens per second for unmatched endpoints
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // Buckets unused this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string  // Endpoint path pattern (supports prefix matching)
	Method string  // HTTP method (GET, POST, etc.)
	Rate   float64 // Tokens per second; zero or less means unlimited
	Burst  int     // Bucket capacity
}

// DefaultConfig returns an enabled limiter config with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultRate:     DefaultRate,
		DefaultBurst:    DefaultBurst,
		CleanupInterval: DefaultCleanupInterval,
		IdleTimeout:     DefaultIdleTimeout,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
	}
}

// LoadConfig builds the service configuration. Message endpoints allow rate
// requests per second with the given burst; the environment can disable
// limiting or list exempt and blocked clients.
func LoadConfig(rate float64, burst int) *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	cfg := DefaultConfig()
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval)
	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))
	cfg.EndpointConfigs = DefaultEndpointConfigs(rate, burst)
	return cfg
}

// DefaultEndpointConfigs limits the endpoints that trigger model calls.
func DefaultEndpointConfigs(rate float64, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/v1/messages", Method: "POST", Rate: rate, Burst: burst},
		{Path: "/v1/messages/", Method: "POST", Rate: rate, Burst: burst},
	}
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
