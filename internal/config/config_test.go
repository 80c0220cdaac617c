package config

import "testing"

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		cfg := S3Config{}
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("required fields set is configured", func(t *testing.T) {
		cfg := S3Config{
			Endpoint:        "https://storage.yandexcloud.net",
			Region:          "ru-central1",
			Bucket:          "bucket",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			PublicBaseURL:   "https://storage.yandexcloud.net/bucket",
		}
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true when all required fields are set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "bucket",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		level, code, _ := (S3Config{}).Diagnostics()
		if level != "INFO" || code != "s3_not_configured" {
			t.Fatalf("expected INFO/s3_not_configured, got %s/%s", level, code)
		}
	})

	t.Run("partial config", func(t *testing.T) {
		level, code, _ := (S3Config{Endpoint: "https://storage.yandexcloud.net"}).Diagnostics()
		if level != "WARN" || code != "s3_partial_config" {
			t.Fatalf("expected WARN/s3_partial_config, got %s/%s", level, code)
		}
	})

	t.Run("region missing", func(t *testing.T) {
		level, code, _ := (S3Config{
			Endpoint:        "https://storage.yandexcloud.net",
			Bucket:          "bucket",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}).Diagnostics()
		if level != "WARN" || code != "s3_partial_config" {
			t.Fatalf("expected WARN/s3_partial_config (missing region+publicBaseURL), got %s/%s", level, code)
		}
	})

	t.Run("ready", func(t *testing.T) {
		level, code, _ := (S3Config{
			Endpoint:        "https://storage.yandexcloud.net",
			Region:          "ru-central1",
			Bucket:          "bucket",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			PublicBaseURL:   "https://storage.yandexcloud.net/bucket",
		}).Diagnostics()
		if level != "INFO" || code != "s3_ready" {
			t.Fatalf("expected INFO/s3_ready, got %s/%s", level, code)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "ENV", "PORT", "AUTH_REQUIRED", "AI_MODE", "AI_DEFAULT_PROVIDER", "PLAN_ATOMIC_SAVE", "BLOB_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "local" || cfg.Port != 8080 {
		t.Fatalf("unexpected env/port: %s/%d", cfg.Env, cfg.Port)
	}
	if !cfg.AuthRequired {
		t.Error("expected auth to be required by default")
	}
	if cfg.AI.Mode != AIModeMock || cfg.AI.DefaultProvider != ProviderMock {
		t.Errorf("expected mock AI by default, got %s/%s", cfg.AI.Mode, cfg.AI.DefaultProvider)
	}
	if !cfg.PlanAtomicSave {
		t.Error("expected atomic save by default")
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Errorf("expected local blob mode, got %s", cfg.Blob.Mode)
	}
	if cfg.PlanDefaultTitle != "My Week Plan" {
		t.Errorf("unexpected default plan title %q", cfg.PlanDefaultTitle)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "0")
	t.Setenv("AI_MODE", "live")
	t.Setenv("AI_DEFAULT_PROVIDER", "gemini")
	t.Setenv("PLAN_ATOMIC_SAVE", "false")
	t.Setenv("BLOB_MODE", "bogus")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg := Load()
	if cfg.AuthRequired {
		t.Error("expected AUTH_REQUIRED=0 to disable auth")
	}
	if cfg.AI.Mode != AIModeLive || cfg.AI.DefaultProvider != ProviderGemini {
		t.Errorf("unexpected AI config %s/%s", cfg.AI.Mode, cfg.AI.DefaultProvider)
	}
	if cfg.PlanAtomicSave {
		t.Error("expected atomic save disabled")
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Errorf("unknown BLOB_MODE should fall back to local, got %s", cfg.Blob.Mode)
	}
	if cfg.AI.KeyFor(ProviderOpenRouter) != "or-key" || cfg.AI.KeyFor("unknown") != "" {
		t.Error("KeyFor returned unexpected keys")
	}
}
