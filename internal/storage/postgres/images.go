package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresImagesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresImagesStorage(pool *pgxpool.Pool) *PostgresImagesStorage {
	return &PostgresImagesStorage{pool: pool}
}

func (s *PostgresImagesStorage) CreateImage(ctx context.Context, image *storage.Image) error {
	const query = `
		INSERT INTO images (id, user_id, content_type, object_key, size_bytes, data)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		image.ID,
		image.UserID,
		image.ContentType,
		image.ObjectKey,
		image.SizeBytes,
		image.Data,
	).Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

func (s *PostgresImagesStorage) GetImage(ctx context.Context, id string) (*storage.Image, error) {
	const query = `
		SELECT id, user_id, content_type, object_key, size_bytes, data, created_at
		FROM images
		WHERE id = $1
	`

	var img storage.Image
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.UserID,
		&img.ContentType,
		&img.ObjectKey,
		&img.SizeBytes,
		&img.Data,
		&img.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

func (s *PostgresImagesStorage) DeleteImage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
