package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage: Postgres реализация хранилищ
type PostgresStorage struct {
	pool        *pgxpool.Pool
	users       *PostgresUsersStorage
	profiles    *PostgresProfilesStorage
	plans       *PostgresPlansStorage
	preferences *PostgresPreferencesStorage
	images      *PostgresImagesStorage
}

// New подключается к базе и проверяет соединение
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:        pool,
		users:       NewPostgresUsersStorage(pool),
		profiles:    NewPostgresProfilesStorage(pool),
		plans:       NewPostgresPlansStorage(pool),
		preferences: NewPostgresPreferencesStorage(pool),
		images:      NewPostgresImagesStorage(pool),
	}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) GetUsersStorage() *PostgresUsersStorage {
	return p.users
}

func (p *PostgresStorage) GetProfilesStorage() *PostgresProfilesStorage {
	return p.profiles
}

func (p *PostgresStorage) GetPlansStorage() *PostgresPlansStorage {
	return p.plans
}

func (p *PostgresStorage) GetPreferencesStorage() *PostgresPreferencesStorage {
	return p.preferences
}

func (p *PostgresStorage) GetImagesStorage() *PostgresImagesStorage {
	return p.images
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
