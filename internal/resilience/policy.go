package resilience

import (
	"time"

	"lexiapi/internal/config"
)

// Config bounds a single collaborator call. There is no retry: every call runs once.
type Config struct {
	Timeout time.Duration

	// RateLimit is the sustained calls per second across all operations; zero disables limiting.
	RateLimit float64
	RateBurst int

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		RateBurst: 1,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

// FromAppConfig maps the environment-level settings onto a guard Config.
func FromAppConfig(c config.CollaboratorConfig) Config {
	minRequests := uint32(0)
	if c.BreakerMinRequests > 0 {
		minRequests = uint32(c.BreakerMinRequests)
	}
	return Config{
		Timeout:             c.Timeout,
		RateLimit:           c.RateLimitRPS,
		RateBurst:           c.RateBurst,
		BreakerEnabled:      c.BreakerEnabled,
		BreakerMinRequests:  minRequests,
		BreakerFailureRatio: c.BreakerFailureRatio,
		BreakerOpenTimeout:  c.BreakerOpenTimeout,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.Timeout <= 0 {
		out.Timeout = def.Timeout
	}
	if out.RateLimit < 0 {
		out.RateLimit = 0
	}
	if out.RateBurst <= 0 {
		out.RateBurst = def.RateBurst
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}
	return out
}
