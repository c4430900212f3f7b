package ratelimit

import (
	"time"

	"github.com/sintrade/edubot/pkg/config"
)

// Rules resolves which limit applies to a given user and command.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether throttling is turned on at all.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}
	return false
}

// CommandLimit returns the limit and window to apply for a command. Commands
// without an override fall back to the per-user default.
func (r *Rules) CommandLimit(command string) (int, time.Duration) {
	if rule, ok := r.config.Commands[command]; ok && rule.Requests > 0 && rule.Window > 0 {
		return rule.Requests, rule.Window
	}
	return r.config.Requests, r.config.Window
}
