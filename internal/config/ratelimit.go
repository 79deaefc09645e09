package config

import (
	"os"
	"time"
)

// RateLimitConfig tunes the Redis token bucket applied to the claim
// endpoint.  Claims are cheap to reject early: a burst of retries after
// SeatContended should be shaped here before it reaches the lock
// provider.
type RateLimitConfig struct {
	Enabled        bool          // disable to pass all traffic through
	Capacity       int           // bucket size (burst)
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // refill period
	TTL            time.Duration // idle bucket expiry in Redis
	Prefix         string        // Redis key prefix
}

// LoadRateLimitConfig reads the rate limiter settings from environment
// variables, applying sane floors so a misconfigured limiter can never
// block all traffic permanently.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}

func envStr(key, d string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return d
}

func envBool(key string, d bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}
