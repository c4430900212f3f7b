// Package session manages per-user profile persistence for the bot.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sintrade/edubot/internal/domain"
)

var (
	// ErrProfileNotFound indicates that no profile exists for the user.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileLocked indicates that a concurrent update already holds the lock.
	ErrProfileLocked = errors.New("profile is locked, try again later")
)

// Store defines the persistence contract for user profiles.
type Store interface {
	// Get returns the stored profile or ErrProfileNotFound when absent.
	Get(ctx context.Context, userID int64) (*domain.Profile, error)
	// Put saves the provided profile.
	Put(ctx context.Context, profile *domain.Profile) error
	// Reset removes the profile for the specified user.
	Reset(ctx context.Context, userID int64) error
	// ForEach visits every stored profile.
	ForEach(ctx context.Context, fn func(profile *domain.Profile) error) error
}

// Locker serializes updates per user.
type Locker interface {
	// Acquire takes the user's lock and returns its release function.
	Acquire(ctx context.Context, userID int64) (release func(), err error)
}

// Manager wraps a Store with per-user locking so that every handler sees a
// consistent profile and concurrent updates from the same user never
// interleave.
type Manager struct {
	store  Store
	locker Locker
	log    *slog.Logger
}

// NewManager creates a session manager over the given backend.
func NewManager(store Store, locker Locker, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		store:  store,
		locker: locker,
		log:    log,
	}
}

// Update loads the user's profile (creating a default one if needed), applies
// fn under the user's lock and persists the result. When fn returns an error
// the profile is not saved.
func (m *Manager) Update(ctx context.Context, userID int64, fn func(profile *domain.Profile) error) (*domain.Profile, error) {
	release, err := m.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	profile, err := m.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		profile = domain.NewProfile(userID)
	}

	if err := fn(profile); err != nil {
		return profile, err
	}

	if err := m.store.Put(ctx, profile); err != nil {
		m.log.Error("failed to persist profile", "user_id", userID, "error", err)
		return nil, err
	}

	return profile, nil
}

// Peek returns the user's profile without persisting anything. A default
// profile is returned when none is stored yet.
func (m *Manager) Peek(ctx context.Context, userID int64) (*domain.Profile, error) {
	profile, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return domain.NewProfile(userID), nil
		}
		return nil, err
	}

	return profile, nil
}

// Reset removes the stored profile so the next interaction starts fresh.
func (m *Manager) Reset(ctx context.Context, userID int64) error {
	release, err := m.locker.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	return m.store.Reset(ctx, userID)
}

// ForEach proxies to the underlying store.
func (m *Manager) ForEach(ctx context.Context, fn func(profile *domain.Profile) error) error {
	return m.store.ForEach(ctx, fn)
}
