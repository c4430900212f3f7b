package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sintrade/edubot/internal/content"
	"github.com/sintrade/edubot/internal/domain"
	"github.com/sintrade/edubot/internal/jobs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestChallengeRotatePublishesToday(t *testing.T) {
	catalog, err := content.Load()
	require.NoError(t, err)

	mr, client := setupRedis(t)
	handler := NewChallengeRotateHandler(catalog, client, testLogger())

	task, err := jobs.NewChallengeRotateTask(time.Time{})
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	raw, err := client.Get(context.Background(), DailyChallengeKey).Result()
	require.NoError(t, err)

	var published domain.Challenge
	require.NoError(t, json.Unmarshal([]byte(raw), &published))
	require.Equal(t, catalog.ChallengeOfDay(time.Now().UTC()), published)

	ttl := mr.TTL(DailyChallengeKey)
	require.Greater(t, ttl, 24*time.Hour, "published challenge must outlive the day")
}

func TestChallengeRotateBackfillDate(t *testing.T) {
	catalog, err := content.Load()
	require.NoError(t, err)

	_, client := setupRedis(t)
	handler := NewChallengeRotateHandler(catalog, client, testLogger())

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := jobs.NewChallengeRotateTask(day)
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	raw, err := client.Get(context.Background(), DailyChallengeKey).Result()
	require.NoError(t, err)

	var published domain.Challenge
	require.NoError(t, json.Unmarshal([]byte(raw), &published))
	require.Equal(t, catalog.ChallengeOfDay(day), published)
}

func TestChallengeRotateRejectsFutureDate(t *testing.T) {
	catalog, err := content.Load()
	require.NoError(t, err)

	_, client := setupRedis(t)
	handler := NewChallengeRotateHandler(catalog, client, testLogger())

	future := time.Now().UTC().AddDate(0, 0, 7)
	task, err := jobs.NewChallengeRotateTask(future)
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	// A future backfill falls back to today's challenge.
	raw, err := client.Get(context.Background(), DailyChallengeKey).Result()
	require.NoError(t, err)

	var published domain.Challenge
	require.NoError(t, json.Unmarshal([]byte(raw), &published))
	require.Equal(t, catalog.ChallengeOfDay(time.Now().UTC()), published)
}
