package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/jobs"
)

// DailyChallengeKey is where the published challenge of the day lives in Redis.
const DailyChallengeKey = "challenge:today"

// ChallengeRotateHandler publishes the challenge of the day so every bot
// instance serves the same one.
type ChallengeRotateHandler struct {
	catalog *content.Catalog
	redis   *goredis.Client
	log     *slog.Logger
}

func NewChallengeRotateHandler(catalog *content.Catalog, redis *goredis.Client, log *slog.Logger) *ChallengeRotateHandler {
	return &ChallengeRotateHandler{catalog: catalog, redis: redis, log: log}
}

func (h *ChallengeRotateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.ChallengeRotatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "challenge rotate: failed to decode payload",
				slog.String("task_type", t.Type()), slog.String("error", err.Error()))
		}
		return err
	}

	// An empty date means the day the task fires. Concrete dates come from
	// manual backfills and must not point into the future.
	day := time.Now().UTC()
	if payload.Date != "" {
		if parsed, err := time.Parse("2006-01-02", payload.Date); err == nil && !parsed.After(day) {
			day = parsed
		}
	}

	challenge := h.catalog.ChallengeOfDay(day)
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	if h.redis != nil {
		if err := h.redis.Set(ctx, DailyChallengeKey, data, 48*time.Hour).Err(); err != nil {
			if h.log != nil {
				h.log.ErrorContext(ctx, "challenge rotate: failed to publish",
					slog.String("error", err.Error()))
			}
			return err
		}
	}

	if h.log != nil {
		h.log.InfoContext(ctx, "challenge of the day published",
			slog.String("date", day.Format("2006-01-02")),
			slog.String("prompt", challenge.Prompt))
	}

	return nil
}
