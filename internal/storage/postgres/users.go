package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUsersStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresUsersStorage(pool *pgxpool.Pool) *PostgresUsersStorage {
	return &PostgresUsersStorage{pool: pool}
}

func (s *PostgresUsersStorage) CreateUser(ctx context.Context, user *storage.User) error {
	const query = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, created_at
	`

	email := strings.ToLower(strings.TrimSpace(user.Email))
	err := s.pool.QueryRow(ctx, query, email, user.PasswordHash).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresUsersStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return s.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (s *PostgresUsersStorage) GetUser(ctx context.Context, id string) (*storage.User, error) {
	const query = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanOne(ctx, query, id)
}

func (s *PostgresUsersStorage) scanOne(ctx context.Context, query string, arg any) (*storage.User, error) {
	var u storage.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

type PostgresProfilesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresProfilesStorage(pool *pgxpool.Pool) *PostgresProfilesStorage {
	return &PostgresProfilesStorage{pool: pool}
}

func (s *PostgresProfilesStorage) UpsertProfile(ctx context.Context, in storage.Profile) (storage.Profile, error) {
	const query = `
		INSERT INTO profiles (id, email, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING id, email, created_at, updated_at
	`

	var out storage.Profile
	err := s.pool.QueryRow(ctx, query, in.ID, in.Email).Scan(&out.ID, &out.Email, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return storage.Profile{}, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return out, nil
}

func (s *PostgresProfilesStorage) GetProfile(ctx context.Context, id string) (*storage.Profile, error) {
	const query = `
		SELECT id, email, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p storage.Profile
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
