package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	limiterChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edubot_ratelimit_checks_total",
		Help: "Rate limit checks by backend and result.",
	}, []string{"backend", "result"})

	limiterBackendErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edubot_ratelimit_backend_errors_total",
		Help: "Errors returned by the primary rate limit backend.",
	})
)

func init() {
	prometheus.MustRegister(limiterChecksTotal, limiterBackendErrorsTotal)
}

// FallbackLimiter checks against a primary (Redis) limiter and switches to a
// stricter in-memory limiter while the primary is failing. The fallback halves
// the limit so a degraded Redis never means looser throttling.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

// NewFallbackLimiter wraps primary with an in-memory fallback.
func NewFallbackLimiter(primary, fallback Limiter, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Check evaluates the limit using the primary backend first.
func (f *FallbackLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := f.primary.Check(ctx, key, limit, window)
	if err == nil {
		limiterChecksTotal.WithLabelValues("redis", resultLabel(result.Allowed)).Inc()
		if !result.Allowed {
			return result, ErrLimitExceeded
		}
		return result, nil
	}

	limiterBackendErrorsTotal.Inc()
	f.log.Warn("primary limiter failed, using in-memory fallback",
		slog.String("key", key), slog.Any("error", err))

	fallbackLimit := limit / 2
	if fallbackLimit <= 0 {
		fallbackLimit = 1
	}

	result, err = f.fallback.Check(ctx, key, fallbackLimit, window)
	if err != nil && result == nil {
		return nil, err
	}

	limiterChecksTotal.WithLabelValues("memory", resultLabel(result.Allowed)).Inc()
	if !result.Allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

func resultLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "rejected"
}
