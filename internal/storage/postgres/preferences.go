package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPreferencesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresPreferencesStorage(pool *pgxpool.Pool) *PostgresPreferencesStorage {
	return &PostgresPreferencesStorage{pool: pool}
}

func (s *PostgresPreferencesStorage) GetPreferences(ctx context.Context, userID string) (storage.PreferencesRecord, bool, error) {
	const query = `
		SELECT user_id, payload, saved_at
		FROM preferences
		WHERE user_id = $1
	`

	var rec storage.PreferencesRecord
	err := s.pool.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.Payload, &rec.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.PreferencesRecord{}, false, nil
	}
	if err != nil {
		return storage.PreferencesRecord{}, false, fmt.Errorf("failed to get preferences: %w", err)
	}
	return rec, true, nil
}

func (s *PostgresPreferencesStorage) UpsertPreferences(ctx context.Context, userID string, payload []byte) (storage.PreferencesRecord, error) {
	const query = `
		INSERT INTO preferences (user_id, payload, saved_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			saved_at = NOW()
		RETURNING user_id, payload, saved_at
	`

	var rec storage.PreferencesRecord
	if err := s.pool.QueryRow(ctx, query, userID, payload).Scan(&rec.UserID, &rec.Payload, &rec.SavedAt); err != nil {
		return storage.PreferencesRecord{}, fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return rec, nil
}
