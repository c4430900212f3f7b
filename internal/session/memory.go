package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sintrade/edubot/internal/domain"
)

// MemoryStore keeps profiles in process memory. It is the default backend
// and the one used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64][]byte
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[int64][]byte)}
}

// Get returns the stored profile or ErrProfileNotFound when absent.
func (s *MemoryStore) Get(_ context.Context, userID int64) (*domain.Profile, error) {
	s.mu.RLock()
	data, ok := s.profiles[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrProfileNotFound
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Put saves a snapshot of the profile. Profiles are stored encoded so callers
// never share mutable state with the store.
func (s *MemoryStore) Put(_ context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.profiles[profile.UserID] = data
	s.mu.Unlock()

	return nil
}

// Reset removes the profile for the specified user.
func (s *MemoryStore) Reset(_ context.Context, userID int64) error {
	s.mu.Lock()
	delete(s.profiles, userID)
	s.mu.Unlock()

	return nil
}

// ForEach visits every stored profile.
func (s *MemoryStore) ForEach(ctx context.Context, fn func(profile *domain.Profile) error) error {
	s.mu.RLock()
	snapshots := make([][]byte, 0, len(s.profiles))
	for _, data := range s.profiles {
		snapshots = append(snapshots, data)
	}
	s.mu.RUnlock()

	for _, data := range snapshots {
		if err := ctx.Err(); err != nil {
			return err
		}

		var profile domain.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return err
		}
		if err := fn(&profile); err != nil {
			return err
		}
	}

	return nil
}

// MemoryLocker serializes per-user updates with one mutex per user.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewMemoryLocker creates an in-process per-user locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*sync.Mutex)}
}

// Acquire blocks until the user's lock is available.
func (l *MemoryLocker) Acquire(_ context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock, nil
}
