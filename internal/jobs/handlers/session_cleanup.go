package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sintrade/edubot/internal/jobs"
	"github.com/sintrade/edubot/internal/session"
)

// SessionCleanupHandler sweeps stale in-flight activity out of profiles.
type SessionCleanupHandler struct {
	cleaner *session.Cleaner
	log     *slog.Logger
}

func NewSessionCleanupHandler(cleaner *session.Cleaner, log *slog.Logger) *SessionCleanupHandler {
	return &SessionCleanupHandler{cleaner: cleaner, log: log}
}

func (h *SessionCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.SessionCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx, "session cleanup: failed to decode payload",
				slog.String("task_type", t.Type()), slog.String("error", err.Error()))
		}
		return err
	}

	if h.cleaner == nil {
		return nil
	}

	swept := h.cleaner.Sweep(ctx)
	if h.log != nil {
		h.log.InfoContext(ctx, "session cleanup finished",
			slog.String("task_type", t.Type()), slog.Int("profiles_swept", swept))
	}

	return nil
}
