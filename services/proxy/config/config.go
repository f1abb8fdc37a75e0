package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultUpstreamBase    = "https://api.maptiler.com/tiles/v3"
	defaultCacheMaxAge     = 24 * time.Hour
	defaultUpstreamTimeout = 10 * time.Second
)

// Config holds environment-driven settings for the edge delivery proxy.
// APIKey is the only place in the system the upstream credential lives;
// it is injected into the handler and never read from ambient state.
type Config struct {
	Port            int
	UpstreamBase    string
	APIKey          string
	CacheMaxAge     time.Duration
	UpstreamTimeout time.Duration
	RateLimitQPS    int // 0 disables rate limiting
}

// Load reads configuration from environment variables (optionally .env).
// A missing API key is not a load error: the proxy starts and fails
// closed with a generic 500 on every tile request instead.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            8081,
		UpstreamBase:    defaultUpstreamBase,
		CacheMaxAge:     defaultCacheMaxAge,
		UpstreamTimeout: defaultUpstreamTimeout,
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("BASEMAP_API_KEY"))

	if base := strings.TrimSpace(os.Getenv("BASEMAP_UPSTREAM_URL")); base != "" {
		cfg.UpstreamBase = strings.TrimRight(base, "/")
	}

	if portStr := os.Getenv("PROXY_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PROXY_PORT: %s", portStr)
		}
	}

	if ageStr := os.Getenv("TILE_CACHE_MAX_AGE"); ageStr != "" {
		d, err := time.ParseDuration(ageStr)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid TILE_CACHE_MAX_AGE: %s", ageStr)
		}
		cfg.CacheMaxAge = d
	}

	if timeoutStr := os.Getenv("UPSTREAM_TIMEOUT"); timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %s", timeoutStr)
		}
		cfg.UpstreamTimeout = d
	}

	if qpsStr := os.Getenv("RATE_LIMIT_QPS"); qpsStr != "" {
		qps, err := strconv.Atoi(qpsStr)
		if err != nil || qps < 0 {
			return cfg, fmt.Errorf("invalid RATE_LIMIT_QPS: %s", qpsStr)
		}
		cfg.RateLimitQPS = qps
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
