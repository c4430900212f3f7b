package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sintrade/edubot/internal/domain"
)

// PostgresStore persists profiles as JSONB rows. It is the durable backend
// for deployments that must survive restarts.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStore creates a SQL-backed profile store.
func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStore{db: db, log: log}
}

// Get returns the stored profile or ErrProfileNotFound when absent.
func (s *PostgresStore) Get(ctx context.Context, userID int64) (*domain.Profile, error) {
	const query = `SELECT data FROM profiles WHERE user_id = $1`

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}

		s.log.Error("failed to load profile", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return &profile, nil
}

// Put upserts the profile row.
func (s *PostgresStore) Put(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	const query = `
		INSERT INTO profiles (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET data = $2, updated_at = $3
	`

	if _, err := s.db.ExecContext(ctx, query, profile.UserID, data, profile.UpdatedAt); err != nil {
		s.log.Error("failed to save profile", "user_id", profile.UserID, "error", err)
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

// Reset removes the profile row for the given user.
func (s *PostgresStore) Reset(ctx context.Context, userID int64) error {
	const query = `DELETE FROM profiles WHERE user_id = $1`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		s.log.Error("failed to delete profile", "user_id", userID, "error", err)
		return fmt.Errorf("delete profile: %w", err)
	}

	return nil
}

// ForEach visits every stored profile ordered by user id.
func (s *PostgresStore) ForEach(ctx context.Context, fn func(profile *domain.Profile) error) error {
	const query = `SELECT data FROM profiles ORDER BY user_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scan profile: %w", err)
		}

		var profile domain.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			s.log.Warn("skipping undecodable profile row", "error", err)
			continue
		}

		if err := fn(&profile); err != nil {
			return err
		}
	}

	return rows.Err()
}
