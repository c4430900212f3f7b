package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/telebot.v3"

	"github.com/sintrade/edubot/internal/i18n"
	"github.com/sintrade/edubot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	i18n    *i18n.Manager
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, translations *i18n.Manager, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		i18n:    translations,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		if m.rules.IsWhitelisted(userID) {
			return next(c)
		}

		command := ExtractCommandName(c)
		limit, window := m.rules.CommandLimit(command)
		if limit <= 0 || window <= 0 {
			return next(c)
		}

		key := fmt.Sprintf("user:%d:%s", userID, command)
		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil && result == nil {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			m.log.Warn("rate limit exceeded",
				slog.Int64("user_id", userID), slog.String("command", command))
			t := m.i18n.Translator("")
			return c.Send(fmt.Sprintf(t.T("ratelimit.slow_down"), window.String()))
		}

		return next(c)
	}
}
