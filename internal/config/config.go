// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/idpscout/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Upstream base URLs.
	ESPNCoreURL string `koanf:"espn_core_url"`
	ESPNSiteURL string `koanf:"espn_site_url"`
	SleeperURL  string `koanf:"sleeper_url"`
	UserAgent   string `koanf:"user_agent"`

	// HTTPTimeoutMS bounds a single upstream request.
	HTTPTimeoutMS  int `koanf:"http_timeout_ms"`
	RetryAttempts  int `koanf:"retry_attempts"`
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// FetchConcurrency bounds the phase 2 athlete fan-out.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// LeadersLimit is the number of athletes requested per leader category.
	LeadersLimit     int      `koanf:"leaders_limit"`
	LeaderCategories []string `koanf:"leader_categories"`

	// Redis backs the fetch cache when RedisAddr is set; otherwise the cache
	// is in process.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	CacheTTLStatsMin    int `koanf:"cache_ttl_stats_min"`
	CacheTTLRegistryMin int `koanf:"cache_ttl_registry_min"`
	CacheTTLLeagueMin   int `koanf:"cache_ttl_league_min"`

	// StrictMatching disables the name-only fallback of the identity matcher.
	StrictMatching bool `koanf:"strict_matching"`

	// DefaultScoring overrides the built-in IDP table used when no league
	// table applies.
	DefaultScoring map[string]float64 `koanf:"default_scoring"`

	// MaxResults caps ?limit on search requests.
	MaxResults int `koanf:"max_results"`

	// CORSOrigins enables CORS for the listed origins; empty disables it.
	CORSOrigins []string `koanf:"cors_allowed_origins"`

	// MCPPath mounts the MCP tool endpoint; empty disables it.
	MCPPath string `koanf:"mcp_path"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		ESPNCoreURL:         "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl",
		ESPNSiteURL:         "https://site.web.api.espn.com/apis/common/v3/sports/football/nfl",
		SleeperURL:          "https://api.sleeper.app/v1",
		UserAgent:           "idpscout/1.0",
		HTTPTimeoutMS:       10_000,
		RetryAttempts:       3,
		RetryBackoffMS:      250,
		FetchConcurrency:    8,
		LeadersLimit:        100,
		LeaderCategories:    []string{"totalTackles", "sacks", "interceptions", "passesDefended", "fumblesForced", "tacklesForLoss"},
		RedisDB:             0,
		CacheTTLStatsMin:    60,
		CacheTTLRegistryMin: 24 * 60,
		CacheTTLLeagueMin:   15,
		StrictMatching:      false,
		DefaultScoring:      scoring.DefaultRules(),
		MaxResults:          500,
		MCPPath:             "/mcp",
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ESPNCoreURL == "" || c.ESPNSiteURL == "" || c.SleeperURL == "":
		return fmt.Errorf("%w: upstream urls must not be empty", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.RetryAttempts < 1:
		return fmt.Errorf("%w: retry_attempts must be at least 1", ErrInvalidConfig)
	case c.RetryBackoffMS < 0:
		return fmt.Errorf("%w: retry_backoff_ms must not be negative", ErrInvalidConfig)
	case c.FetchConcurrency < 1:
		return fmt.Errorf("%w: fetch_concurrency must be at least 1", ErrInvalidConfig)
	case c.LeadersLimit < 1:
		return fmt.Errorf("%w: leaders_limit must be at least 1", ErrInvalidConfig)
	case len(c.LeaderCategories) == 0:
		return fmt.Errorf("%w: leader_categories must not be empty", ErrInvalidConfig)
	case c.MaxResults < 1:
		return fmt.Errorf("%w: max_results must be at least 1", ErrInvalidConfig)
	case c.MCPPath != "" && !strings.HasPrefix(c.MCPPath, "/"):
		return fmt.Errorf("%w: mcp_path must start with /", ErrInvalidConfig)
	}
	for k := range c.DefaultScoring {
		if !scoring.IsCategory(k) {
			return fmt.Errorf("%w: default_scoring has unknown category %q", ErrInvalidConfig, k)
		}
	}
	return nil
}

// HTTPTimeout returns the per-request upstream timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// RetryBackoff returns the base delay between upstream retries.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// StatsTTL is the cache lifetime of leader and athlete responses.
func (c *Config) StatsTTL() time.Duration { return minutes(c.CacheTTLStatsMin) }

// RegistryTTL is the cache lifetime of the platform player registry.
func (c *Config) RegistryTTL() time.Duration { return minutes(c.CacheTTLRegistryMin) }

// LeagueTTL is the cache lifetime of league, user and roster responses.
func (c *Config) LeagueTTL() time.Duration { return minutes(c.CacheTTLLeagueMin) }

func minutes(n int) time.Duration {
	if n < 0 {
		return 0
	}
	return time.Duration(n) * time.Minute
}
