package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/weekplan/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPlansStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresPlansStorage(pool *pgxpool.Pool) *PostgresPlansStorage {
	return &PostgresPlansStorage{pool: pool}
}

func (s *PostgresPlansStorage) LatestPlan(ctx context.Context, userID string) (storage.Plan, bool, error) {
	const query = `
		SELECT id, user_id, title, created_at
		FROM plans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var plan storage.Plan
	err := s.pool.QueryRow(ctx, query, userID).Scan(&plan.ID, &plan.UserID, &plan.Title, &plan.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Plan{}, false, nil
	}
	if err != nil {
		return storage.Plan{}, false, fmt.Errorf("failed to get latest plan: %w", err)
	}
	return plan, true, nil
}

func (s *PostgresPlansStorage) CreatePlan(ctx context.Context, userID, title string) (storage.Plan, error) {
	const query = `
		INSERT INTO plans (user_id, title)
		VALUES ($1, $2)
		RETURNING id, user_id, title, created_at
	`

	var plan storage.Plan
	err := s.pool.QueryRow(ctx, query, userID, title).Scan(&plan.ID, &plan.UserID, &plan.Title, &plan.CreatedAt)
	if err != nil {
		return storage.Plan{}, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

func (s *PostgresPlansStorage) ListItems(ctx context.Context, planID string) ([]storage.PlanItem, error) {
	const query = `
		SELECT plan_id, dow, title, image_url, color
		FROM plan_items
		WHERE plan_id = $1
		ORDER BY dow
	`

	rows, err := s.pool.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan items: %w", err)
	}
	defer rows.Close()

	items := []storage.PlanItem{}
	for rows.Next() {
		var item storage.PlanItem
		if err := rows.Scan(&item.PlanID, &item.DOW, &item.Title, &item.ImageURL, &item.Color); err != nil {
			return nil, fmt.Errorf("failed to scan plan item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating plan items: %w", rows.Err())
	}
	return items, nil
}

func (s *PostgresPlansStorage) DeleteItems(ctx context.Context, planID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("failed to delete plan items: %w", err)
	}
	return nil
}

// InsertItems sends all rows in one batch; the batch runs in an implicit
// transaction, so a failing row inserts nothing.
func (s *PostgresPlansStorage) InsertItems(ctx context.Context, planID string, items []storage.PlanItem) error {
	if len(items) == 0 {
		return nil
	}
	br := s.pool.SendBatch(ctx, insertBatch(planID, items))
	defer br.Close()
	return execBatch(br, len(items))
}

// ReplaceItems deletes and reinserts the plan's items in one transaction.
func (s *PostgresPlansStorage) ReplaceItems(ctx context.Context, planID string, items []storage.PlanItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("failed to delete plan items: %w", err)
	}

	if len(items) > 0 {
		br := tx.SendBatch(ctx, insertBatch(planID, items))
		if err := execBatch(br, len(items)); err != nil {
			br.Close()
			return err
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertBatch(planID string, items []storage.PlanItem) *pgx.Batch {
	const query = `
		INSERT INTO plan_items (plan_id, dow, title, image_url, color)
		VALUES ($1, $2, $3, $4, $5)
	`
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, planID, item.DOW, item.Title, item.ImageURL, item.Color)
	}
	return batch
}

func execBatch(br pgx.BatchResults, n int) error {
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert plan item: %w", err)
		}
	}
	return nil
}
