package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	AIModeMock = "mock"
	AIModeLive = "live"
)

// AI providers accepted by the recipe generator.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderGrok       = "grok"
	ProviderMock       = "mock"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		SetOrNot(c.AccessKeyID),
		SetOrNot(c.SecretAccessKey),
	)
}

// SetOrNot reports whether a secret has a value without revealing it.
func SetOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// AIConfig holds server-side credentials for recipe generation. Requests
// may bring their own key; these are the fallback.
type AIConfig struct {
	Mode              string // mock | live
	TimeoutSeconds    int
	DefaultProvider   string
	DefaultModel      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenRouterAPIKey  string
	OpenRouterURL     string
	OpenRouterReferer string
	GeminiAPIKey      string
	GrokAPIKey        string
	GrokBaseURL       string
}

// KeyFor returns the configured API key for provider, or "".
func (c AIConfig) KeyFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderGrok:
		return c.GrokAPIKey
	default:
		return ""
	}
}

// Config содержит конфигурацию приложения
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// Migrations
	RunMigrationsOnStartup bool
	MigrationsDir          string // empty: embedded migrations

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob storage for slot images
	Blob BlobConfig

	// Uploads
	UploadMaxMB       int
	UploadAllowedMime string
	ImageMaxWidth     int

	// Authentication
	AuthRequired      bool
	JWTSecret         string
	JWTIssuer         string
	JWTTTLMinutes     int
	PasswordMinLength int

	// Email
	EmailSenderMode string // local | smtp | resend
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPUseTLS      bool
	ResendAPIKey    string
	ResendFrom      string
	AppPublicURL    string

	// AI
	AI AIConfig

	// Recipe clipper
	ClipperTimeoutSeconds int
	ClipperUserAgent      string

	// Planner
	PlanDefaultTitle string
	PlanAtomicSave   bool
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- CORS / rate limit ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Blob / S3 ----------
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	blobCfg := BlobConfig{
		Mode: parseEnum("BLOB_MODE", BlobModeLocal, BlobModeLocal, BlobModeS3, BlobModeAuto),
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
	}

	uploadAllowedMime := os.Getenv("UPLOAD_ALLOWED_MIME")
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/jpeg,image/png,image/gif"
	}
	imageMaxWidth := envInt("IMAGE_MAX_WIDTH", 800)
	if imageMaxWidth <= 0 {
		imageMaxWidth = 800
	}

	// ---------- Auth ----------
	authRequired := true
	if raw := strings.TrimSpace(os.Getenv("AUTH_REQUIRED")); raw != "" {
		authRequired = parseBoolEnv("AUTH_REQUIRED")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "weekplan"
	}

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)
	if jwtTTLMinutes <= 0 {
		jwtTTLMinutes = 10080
	}

	passwordMinLength := envInt("PASSWORD_MIN_LENGTH", 6)
	if passwordMinLength <= 0 {
		passwordMinLength = 6
	}

	// ---------- Email ----------
	emailSenderMode := parseEnum("EMAIL_SENDER_MODE", "local", "local", "smtp", "resend")
	resendAPIKey := strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	resendFrom := strings.TrimSpace(os.Getenv("RESEND_FROM"))
	if resendFrom == "" {
		resendFrom = "Weekplan <onboarding@resend.dev>"
	}
	if emailSenderMode == "resend" && resendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is required when EMAIL_SENDER_MODE=resend")
	}
	smtpPort := envInt("SMTP_PORT", 587)
	if smtpPort <= 0 {
		smtpPort = 587
	}
	smtpFrom := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if smtpFrom == "" {
		smtpFrom = "Weekplan <no-reply@weekplan.ai>"
	}
	appPublicURL := strings.TrimRight(strings.TrimSpace(os.Getenv("APP_PUBLIC_URL")), "/")
	if appPublicURL == "" {
		appPublicURL = fmt.Sprintf("http://localhost:%d", port)
	}

	// ---------- AI ----------
	aiMode := parseEnum("AI_MODE", AIModeMock, AIModeMock, AIModeLive)
	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 60)
	if aiTimeoutSeconds <= 0 {
		aiTimeoutSeconds = 60
	}
	defaultProvider := parseEnum("AI_DEFAULT_PROVIDER", ProviderOpenRouter,
		ProviderOpenRouter, ProviderOpenAI, ProviderGemini, ProviderGrok, ProviderMock)
	if aiMode == AIModeMock {
		defaultProvider = ProviderMock
	}

	aiCfg := AIConfig{
		Mode:              aiMode,
		TimeoutSeconds:    aiTimeoutSeconds,
		DefaultProvider:   defaultProvider,
		DefaultModel:      envString("AI_DEFAULT_MODEL", "openai/gpt-4o-mini"),
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:     envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenRouterAPIKey:  strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterURL:     envString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer: envString("OPENROUTER_REFERER", appPublicURL),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GrokAPIKey:        strings.TrimSpace(os.Getenv("GROK_API_KEY")),
		GrokBaseURL:       envString("GROK_BASE_URL", "https://api.x.ai/v1"),
	}

	clipperTimeout := envInt("CLIPPER_TIMEOUT_SECONDS", 10)
	if clipperTimeout <= 0 {
		clipperTimeout = 10
	}

	planAtomicSave := true
	if raw := strings.TrimSpace(os.Getenv("PLAN_ATOMIC_SAVE")); raw != "" {
		planAtomicSave = parseBoolEnv("PLAN_ATOMIC_SAVE")
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
		MigrationsDir:          strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: blobCfg,

		UploadMaxMB:       envInt("UPLOAD_MAX_MB", 10),
		UploadAllowedMime: uploadAllowedMime,
		ImageMaxWidth:     imageMaxWidth,

		AuthRequired:      authRequired,
		JWTSecret:         jwtSecret,
		JWTIssuer:         jwtIssuer,
		JWTTTLMinutes:     jwtTTLMinutes,
		PasswordMinLength: passwordMinLength,

		EmailSenderMode: emailSenderMode,
		SMTPHost:        strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:        smtpPort,
		SMTPUsername:    strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:    strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		SMTPFrom:        smtpFrom,
		SMTPUseTLS:      parseBoolEnv("SMTP_USE_TLS"),
		ResendAPIKey:    resendAPIKey,
		ResendFrom:      resendFrom,
		AppPublicURL:    appPublicURL,

		AI: aiCfg,

		ClipperTimeoutSeconds: clipperTimeout,
		ClipperUserAgent:      envString("CLIPPER_USER_AGENT", "WeekplanClipper/1.0"),

		PlanDefaultTitle: envString("PLAN_DEFAULT_TITLE", "My Week Plan"),
		PlanAtomicSave:   planAtomicSave,
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:5173", "http://localhost:3000"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// parseEnum reads a lower-cased env value restricted to allowed, warning
// and falling back to defaultVal otherwise.
func parseEnum(key, defaultVal string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Printf("WARNING: unknown %s=%q, fallback to %s", key, v, defaultVal)
	return defaultVal
}

func envString(key, defaultVal string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return v
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
