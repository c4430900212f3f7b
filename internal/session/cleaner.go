package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sintrade/edubot/internal/domain"
)

// Cleaner abandons stale in-flight activity on a schedule. A quiz or
// simulation left hanging for longer than the TTL is cleared so the user
// comes back to a clean lesson prompt instead of a half-finished exchange.
// Curriculum progress itself is never touched.
type Cleaner struct {
	sessions *Manager
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(sessions *Manager, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		sessions: sessions,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if reason := ctx.Err(); reason != nil {
				c.log.Info("session cleaner stopped", slog.String("reason", reason.Error()))
			}
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// errSweepSkip aborts a sweep Update without persisting.
var errSweepSkip = errors.New("profile no longer stale")

// Sweep runs a single cleanup pass and returns how many profiles it touched.
// Writes go through the per-user lock and re-check staleness there, so a
// handler update racing the sweep is never overwritten.
func (c *Cleaner) Sweep(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	var staleIDs []int64
	err := c.sessions.ForEach(ctx, func(profile *domain.Profile) error {
		if c.stale(profile) {
			staleIDs = append(staleIDs, profile.UserID)
		}
		return nil
	})
	if err != nil {
		c.log.Error("session cleaner sweep failed", slog.Any("error", err))
		return 0
	}

	cleared := 0
	for _, userID := range staleIDs {
		_, err := c.sessions.Update(ctx, userID, func(profile *domain.Profile) error {
			if !c.stale(profile) {
				return errSweepSkip
			}

			profile.Quiz = nil
			profile.Simulation = nil
			profile.Challenge = nil
			profile.PendingLesson = nil
			profile.AssistantMode = false
			return nil
		})
		if errors.Is(err, errSweepSkip) {
			continue
		}
		if err != nil {
			c.log.Error("session cleaner failed to save profile",
				slog.Int64("user_id", userID), slog.Any("error", err))
			continue
		}

		cleared++
		c.log.Info("stale activity cleared", slog.Int64("user_id", userID))
	}

	return cleared
}

func (c *Cleaner) stale(p *domain.Profile) bool {
	active := p.HasActiveQuiz() || p.HasActiveSimulation() || p.HasActiveChallenge() ||
		p.PendingLesson != nil || p.AssistantMode
	if !active {
		return false
	}

	return time.Since(p.UpdatedAt) > c.ttl
}
