package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	appcfg "github.com/fdg312/weekplan/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Pinger is implemented by stores that can check they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// opener builds the S3 store; tests swap it out.
type opener func(ctx context.Context, c appcfg.S3Config) (Store, error)

const pingTimeout = 5 * time.Second

// NewBlobStore resolves BLOB_MODE. A nil store with mode=local means
// image bytes live in the database.
//
//	local  always the database
//	auto   S3 when fully configured and the bucket answers, else local
//	s3     S3 or an error
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	return newBlobStore(ctx, cfg, logger, openS3)
}

func newBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger Logger, open opener) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logf(logger, "INFO blob: mode=local (forced)")
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		level, code, msg := cfg.S3.Diagnostics()
		logf(logger, "%s blob.s3: code=%s %s", level, code, msg)
		if !cfg.S3.IsConfigured() {
			logf(logger, "INFO blob: mode=local (auto, S3 not configured)")
			return nil, appcfg.BlobModeLocal, nil
		}

		store, err := openAndPing(ctx, cfg.S3, logger, open)
		if err != nil {
			logf(logger, "WARN blob.s3: unavailable err=%q, fallback=local", err.Error())
			return nil, appcfg.BlobModeLocal, nil
		}
		logf(logger, "INFO blob: mode=s3 (auto, configured)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if missing := cfg.S3.MissingRequired(); len(missing) > 0 {
			logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := openAndPing(ctx, cfg.S3, logger, open)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}
		logf(logger, "INFO blob: mode=s3 (forced)")
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func openAndPing(ctx context.Context, c appcfg.S3Config, logger Logger, open opener) (Store, error) {
	logf(logger, "INFO blob.s3: %s", c.DiagnosticsSummary())

	store, err := open(ctx, c)
	if err != nil {
		return nil, err
	}
	if p, ok := store.(Pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func openS3(ctx context.Context, c appcfg.S3Config) (Store, error) {
	store, err := NewS3Store(ctx, c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
