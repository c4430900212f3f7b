package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sintrade/edubot/internal/domain"
)

// Profile data and lock keys live under disjoint prefixes so a profile scan
// never picks up lock values.
const (
	profileKeyPattern  = "profile:data:%d"
	profileScanPattern = "profile:data:*"
	profileScanBatch   = 100

	lockKeyPattern = "lock:profile:%d"
	lockTTL        = 5 * time.Second
	lockRetryEvery = 50 * time.Millisecond
	lockWait       = 2 * time.Second
)

// RedisStore persists profiles in Redis with a TTL so idle sessions expire
// on their own.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

// NewRedisStore initializes a Redis-backed Store.
func NewRedisStore(client *redis.Client, log *slog.Logger, ttl time.Duration) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStore{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// Get returns the stored profile or ErrProfileNotFound when absent.
func (s *RedisStore) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProfileNotFound
		}

		s.log.Error("failed to get profile from redis", "user_id", userID, "error", err)
		return nil, err
	}

	var profile domain.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		s.log.Error("failed to decode profile", "user_id", userID, "error", err)
		return nil, err
	}

	return &profile, nil
}

// Put saves the profile and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		s.log.Error("failed to encode profile", "user_id", profile.UserID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, profileKey(profile.UserID), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to save profile in redis", "user_id", profile.UserID, "error", err)
		return err
	}

	return nil
}

// Reset removes the stored profile for the given user.
func (s *RedisStore) Reset(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		s.log.Error("failed to clear profile", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// ForEach visits every stored profile by scanning Redis keys.
func (s *RedisStore) ForEach(ctx context.Context, fn func(profile *domain.Profile) error) error {
	var cursor uint64

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, profileScanPattern, profileScanBatch).Result()
		if err != nil {
			s.log.Error("failed to scan profiles", "error", err)
			return err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch profile", "key", key, "error", err)
				return err
			}

			var profile domain.Profile
			if err := json.Unmarshal([]byte(data), &profile); err != nil {
				s.log.Warn("skipping undecodable profile", "key", key, "error", err)
				continue
			}

			if err := fn(&profile); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// RedisLocker serializes per-user updates across bot instances with SetNX
// locks.
type RedisLocker struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisLocker creates a Redis-backed per-user locker.
func NewRedisLocker(client *redis.Client, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLocker{client: client, log: log}
}

// Acquire polls for the user's lock for a bounded time before giving up with
// ErrProfileLocked. The lock carries its own TTL so a crashed holder cannot
// wedge the user forever.
func (l *RedisLocker) Acquire(ctx context.Context, userID int64) (func(), error) {
	key := fmt.Sprintf(lockKeyPattern, userID)
	deadline := time.Now().Add(lockWait)

	for {
		acquired, err := l.client.SetNX(ctx, key, 1, lockTTL).Result()
		if err != nil {
			l.log.Error("failed to acquire profile lock", "user_id", userID, "error", err)
			return nil, err
		}

		if acquired {
			release := func() {
				if err := l.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
					l.log.Error("failed to release profile lock", "user_id", userID, "error", err)
				}
			}
			return release, nil
		}

		if time.Now().After(deadline) {
			l.log.Warn("profile lock already held", "user_id", userID)
			return nil, ErrProfileLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryEvery):
		}
	}
}

func profileKey(userID int64) string {
	return fmt.Sprintf(profileKeyPattern, userID)
}
