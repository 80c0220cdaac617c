package dbmigrate

import (
	"errors"
	"strings"

	"github.com/fdg312/weekplan/internal/config"
)

// DefaultMigrationsDir selects the migrations embedded in the binary.
// Set MIGRATIONS_DIR to read them from disk instead.
const DefaultMigrationsDir = ""

var (
	ErrNoDirectURL   = errors.New("DATABASE_URL_DIRECT is required for DDL/migrations")
	ErrNoDatabaseURL = errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
)

const pooledWarning = "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT"

type urlCandidate struct {
	source  string
	url     string
	warning string
}

// candidates lists the URLs usable for DDL, best first.
func candidates(cfg *config.Config) []urlCandidate {
	return []urlCandidate{
		{source: "DATABASE_URL_DIRECT", url: cfg.DatabaseURLDirect},
		{source: "DATABASE_URL", url: cfg.DatabaseURLRaw},
		{source: "DATABASE_URL_POOLED", url: cfg.DatabaseURLPooled, warning: pooledWarning},
	}
}

// SelectDatabaseURL picks the URL migrations run against:
// DIRECT > DATABASE_URL > POOLED (with a warning). With requireDirect only
// DATABASE_URL_DIRECT is accepted, which startup migrations use.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL string, source string, warning string, err error) {
	list := candidates(cfg)
	if requireDirect {
		list = list[:1]
	}

	for _, c := range list {
		if strings.TrimSpace(c.url) != "" {
			return c.url, c.source, c.warning, nil
		}
	}

	if requireDirect {
		return "", "", "", ErrNoDirectURL
	}
	return "", "", "", ErrNoDatabaseURL
}
