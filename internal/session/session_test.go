package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintrade/edubot/internal/domain"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	profile := domain.NewProfile(123)
	profile.Level = domain.LevelIntermediate
	profile.CurrentLessonIndex = 1

	require.NoError(t, store.Put(ctx, profile))

	result, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(123), result.UserID)
	assert.Equal(t, domain.LevelIntermediate, result.Level)
	assert.Equal(t, 1, result.CurrentLessonIndex)

	// The stored snapshot must not alias the caller's struct.
	profile.CurrentLessonIndex = 5
	again, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, 1, again.CurrentLessonIndex)
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	store := NewMemoryStore()

	result, err := store.Get(context.Background(), 999)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestMemoryStore_Reset(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.NewProfile(7)))
	require.NoError(t, store.Reset(ctx, 7))

	_, err := store.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRedisStore_PutAndGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, testLogger(), time.Hour)
	ctx := context.Background()

	profile := domain.NewProfile(456)
	profile.LessonCompleted = true
	profile.Quiz = &domain.QuizRecord{
		LessonID: "BEG-1",
		Level:    domain.LevelBeginner,
		Questions: []domain.QuizQuestion{{
			Prompt:  "q",
			Options: map[string]string{"A": "a", "B": "b"},
			Answer:  "A",
		}},
	}

	require.NoError(t, store.Put(ctx, profile))

	result, err := store.Get(ctx, 456)
	require.NoError(t, err)
	assert.Equal(t, int64(456), result.UserID)
	assert.True(t, result.LessonCompleted)
	if assert.NotNil(t, result.Quiz) {
		assert.Equal(t, "BEG-1", result.Quiz.LessonID)
	}
}

func TestRedisStore_GetNotFound(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, testLogger(), time.Hour)

	result, err := store.Get(context.Background(), 999)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRedisStore_ForEach(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, testLogger(), time.Hour)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, store.Put(ctx, domain.NewProfile(id)))
	}

	seen := map[int64]bool{}
	err := store.ForEach(ctx, func(p *domain.Profile) error {
		seen[p.UserID] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestRedisStore_ForEachSkipsLockKeys(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedisStore(client, testLogger(), time.Hour)
	locker := NewRedisLocker(client, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, domain.NewProfile(1)))

	release, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)
	defer release()

	seen := map[int64]bool{}
	err = store.ForEach(ctx, func(p *domain.Profile) error {
		seen[p.UserID] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true}, seen)
}

func TestRedisLocker_SerializesAcquire(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisLocker(client, testLogger())
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)

	shortCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(shortCtx, 1)
	assert.Error(t, err)

	release()

	release2, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)
	release2()
}

func TestManager_UpdateCreatesDefaultProfile(t *testing.T) {
	manager := NewManager(NewMemoryStore(), NewMemoryLocker(), testLogger())
	ctx := context.Background()

	profile, err := manager.Update(ctx, 42, func(p *domain.Profile) error {
		assert.Equal(t, domain.LevelBeginner, p.Level)
		assert.Equal(t, domain.AccessFree, p.Access)
		p.CurrentLessonIndex = 2
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, profile.CurrentLessonIndex)

	stored, err := manager.Peek(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentLessonIndex)
}

func TestManager_UpdateErrorDoesNotPersist(t *testing.T) {
	manager := NewManager(NewMemoryStore(), NewMemoryLocker(), testLogger())
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := manager.Update(ctx, 42, func(p *domain.Profile) error {
		p.CurrentLessonIndex = 9
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := manager.Peek(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentLessonIndex)
}

func TestManager_ConcurrentUpdatesDoNotInterleave(t *testing.T) {
	manager := NewManager(NewMemoryStore(), NewMemoryLocker(), testLogger())
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, 1, func(p *domain.Profile) error {
				p.SimulationsDone++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	profile, err := manager.Peek(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, workers, profile.SimulationsDone)
}

func TestCleaner_SweepClearsStaleActivity(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale := domain.NewProfile(1)
	stale.Quiz = &domain.QuizRecord{LessonID: "BEG-1"}
	stale.CurrentLessonIndex = 2
	require.NoError(t, store.Put(ctx, stale))
	// backdate the snapshot past the TTL
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	store.mu.Lock()
	store.profiles[1] = data
	store.mu.Unlock()

	fresh := domain.NewProfile(2)
	fresh.Quiz = &domain.QuizRecord{LessonID: "BEG-1"}
	require.NoError(t, store.Put(ctx, fresh))

	manager := NewManager(store, NewMemoryLocker(), testLogger())
	cleaner := NewCleaner(manager, testLogger(), time.Hour, time.Minute)
	cleared := cleaner.Sweep(ctx)
	assert.Equal(t, 1, cleared)

	was, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, was.Quiz)
	assert.Equal(t, 2, was.CurrentLessonIndex)

	kept, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, kept.Quiz)
}

func TestCleaner_SweepWaitsForHeldLock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale := domain.NewProfile(1)
	stale.Quiz = &domain.QuizRecord{LessonID: "BEG-1"}
	require.NoError(t, store.Put(ctx, stale))
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	store.mu.Lock()
	store.profiles[1] = data
	store.mu.Unlock()

	locker := NewMemoryLocker()
	manager := NewManager(store, locker, testLogger())
	cleaner := NewCleaner(manager, testLogger(), time.Hour, time.Minute)

	release, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() { done <- cleaner.Sweep(ctx) }()

	// The sweep must not touch the profile while a handler holds the lock.
	time.Sleep(50 * time.Millisecond)
	held, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, held.Quiz)

	release()
	assert.Equal(t, 1, <-done)

	after, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, after.Quiz)
}

func TestCleaner_SweepSkipsProfileRefreshedUnderLock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale := domain.NewProfile(1)
	stale.Quiz = &domain.QuizRecord{LessonID: "BEG-1"}
	require.NoError(t, store.Put(ctx, stale))
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	store.mu.Lock()
	store.profiles[1] = data
	store.mu.Unlock()

	locker := NewMemoryLocker()
	manager := NewManager(store, locker, testLogger())
	cleaner := NewCleaner(manager, testLogger(), time.Hour, time.Minute)

	release, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() { done <- cleaner.Sweep(ctx) }()

	// A handler update lands while the sweep waits on the lock.
	time.Sleep(50 * time.Millisecond)
	refreshed, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, refreshed))
	release()

	assert.Equal(t, 0, <-done)

	kept, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, kept.Quiz)
}
