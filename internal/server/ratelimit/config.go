package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/job-assistant/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// FromSettings builds the limiter configuration from the rate limit section.
func FromSettings(s config.RateLimitConfig) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow.Std(),
		CleanupInterval: s.CleanupInterval.Std(),
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       ipSet(s.Blacklist),
		EndpointConfigs: FlowEndpointConfigs(s.FlowLimit, s.FlowWindow.Std()),
	}
}

// FlowEndpointConfigs returns the limits for routes that call the backend.
// Each of them costs a backend request, most of them an LLM call.
func FlowEndpointConfigs(limit int, window time.Duration) []EndpointConfig {
	burst := max(limit/6, 1)
	flow := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: limit, Window: window, Burst: burst}
	}
	return []EndpointConfig{
		flow("/ui/resume"),
		flow("/ui/jobs/search"),
		flow("/ui/jobs/"), // cover letters and research by job index
		flow("/ui/skills/analyze"),
		flow("/ui/skills/analyze/stream"),
		flow("/ui/courses"),
		flow("/ui/research"),
	}
}

// ipSet turns a list of addresses into a lookup set.
func ipSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
