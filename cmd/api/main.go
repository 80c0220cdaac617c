package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/dbmigrate"
	"github.com/fdg312/weekplan/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("INFO migrations: command=up using=%s dir=%s", source, migrationsDirLabel(cfg.MigrationsDir))
		if err := dbmigrate.Run("up", dbURL, cfg.MigrationsDir); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("INFO migrations: completed")
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("FATAL server: %v", err)
		}
	case <-ctx.Done():
		log.Printf("INFO server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARN server: shutdown: %v", err)
		}
	}
}

// printStartupBanner logs the resolved configuration once. Secrets are
// only reported as "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Weekplan API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)

	log.Println("---- database ----")
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  pooled           = %s", config.SetOrNot(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", config.SetOrNot(cfg.DatabaseURLDirect))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	log.Printf("  migrations_dir   = %s", migrationsDirLabel(cfg.MigrationsDir))

	log.Println("---- auth ----")
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, "change_me"))
	log.Printf("  jwt_ttl_minutes  = %d", cfg.JWTTTLMinutes)

	log.Println("---- blob ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	if cfg.Blob.Mode != config.BlobModeLocal {
		level, code, _ := cfg.Blob.S3.Diagnostics()
		log.Printf("  s3 [%s %s]: %s", level, code, cfg.Blob.S3.DiagnosticsSummary())
	}
	log.Printf("  upload_max_mb    = %d", cfg.UploadMaxMB)
	log.Printf("  upload_mime      = %s", nonEmptyOrDash(cfg.UploadAllowedMime))
	log.Printf("  image_max_width  = %d", cfg.ImageMaxWidth)

	log.Println("---- mailer ----")
	log.Printf("  email_sender     = %s", cfg.EmailSenderMode)
	switch cfg.EmailSenderMode {
	case "smtp":
		log.Printf("  smtp_host        = %s", nonEmptyOrDash(cfg.SMTPHost))
		log.Printf("  smtp_port        = %d", cfg.SMTPPort)
		log.Printf("  smtp_from        = %s", nonEmptyOrDash(cfg.SMTPFrom))
		log.Printf("  smtp_username    = %s", config.SetOrNot(cfg.SMTPUsername))
		log.Printf("  smtp_password    = %s", config.SetOrNot(cfg.SMTPPassword))
		log.Printf("  smtp_use_tls     = %t", cfg.SMTPUseTLS)
	case "resend":
		log.Printf("  resend_api_key   = %s", config.SetOrNot(cfg.ResendAPIKey))
		log.Printf("  resend_from      = %s", nonEmptyOrDash(cfg.ResendFrom))
	default:
		log.Printf("  (welcome mails are printed to the server console)")
	}

	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AI.Mode)
	log.Printf("  default_provider = %s", nonEmptyOrDash(cfg.AI.DefaultProvider))
	log.Printf("  default_model    = %s", nonEmptyOrDash(cfg.AI.DefaultModel))
	for _, p := range []string{config.ProviderOpenRouter, config.ProviderOpenAI, config.ProviderGemini, config.ProviderGrok} {
		log.Printf("  %-16s = %s", p+"_key", config.SetOrNot(cfg.AI.KeyFor(p)))
	}

	log.Println("---- planner ----")
	log.Printf("  default_title    = %s", cfg.PlanDefaultTitle)
	log.Printf("  atomic_save      = %t", cfg.PlanAtomicSave)

	log.Println("==================================")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: BLOB_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.EmailSenderMode == "smtp" {
		var missing []string
		if strings.TrimSpace(cfg.SMTPHost) == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if cfg.SMTPPort <= 0 {
			missing = append(missing, "SMTP_PORT")
		}
		if strings.TrimSpace(cfg.SMTPFrom) == "" {
			missing = append(missing, "SMTP_FROM")
		}
		if len(missing) > 0 {
			log.Fatalf("FATAL mailer: EMAIL_SENDER_MODE=smtp but config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.EmailSenderMode == "resend" && strings.TrimSpace(cfg.ResendAPIKey) == "" {
		log.Fatal("FATAL mailer: EMAIL_SENDER_MODE=resend but RESEND_API_KEY is not set")
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		log.Fatalf("FATAL auth: JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env)
	}

	if isProd && cfg.DatabaseURL == "" {
		log.Fatalf("FATAL db: no DATABASE_URL configured in %s", cfg.Env)
	}

	if isProd && cfg.AI.Mode == config.AIModeMock {
		log.Printf("WARN ai: AI_MODE=mock in %s, recipe generation returns canned dinners", cfg.Env)
	}
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func migrationsDirLabel(dir string) string {
	if dir == "" {
		return "(embedded)"
	}
	return dir
}
