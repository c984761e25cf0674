// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is the full set of runtime settings for the API.
type Config struct {
	Port       string
	BaseURL    string
	CORSOrigin string

	DatabaseDSN string
	ReadOnlyDSN string // AI assistant queries; empty reuses DatabaseDSN
	NodeID      int64

	JWTSecret     string
	SessionSecret string

	UploadDir string

	PaystackPublicKey      string
	PaystackSecretKey      string
	PaymentReferencePrefix string

	ResendAPIKey        string
	EmailFrom           string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	FallbackNotifyEmail string
	NotifyFunctionURL   string
	FunctionsSecret     string

	ReportSchedule string

	GeminiAPIKey string
	GeminiModel  string

	LogLevel string
	LogFile  string
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their own values.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:       get("PORT", "8080"),
		BaseURL:    strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigin: get("CORS_ORIGIN", "http://localhost:5173"),

		DatabaseDSN: get("DB_DSN_PRIMARY", ""),
		ReadOnlyDSN: get("DB_DSN_READONLY", ""),
		NodeID:      cast.ToInt64(get("NODE_ID", "1")),

		JWTSecret:     get("JWT_SECRET", ""),
		SessionSecret: get("SESSION_SECRET", ""),

		UploadDir: get("UPLOAD_DIR", "./uploads"),

		PaystackPublicKey:      get("PAYSTACK_PUBLIC_KEY", ""),
		PaystackSecretKey:      get("PAYSTACK_SECRET_KEY", ""),
		PaymentReferencePrefix: get("PAYMENT_REFERENCE_PREFIX", "HIDAAYA_"),

		ResendAPIKey:        get("RESEND_API_KEY", ""),
		EmailFrom:           get("EMAIL_FROM", "Hidaaya Store <orders@hidaaya.store>"),
		SMTPHost:            get("SMTP_HOST", ""),
		SMTPPort:            cast.ToInt(get("SMTP_PORT", "587")),
		SMTPUsername:        get("SMTP_USERNAME", ""),
		SMTPPassword:        get("SMTP_PASSWORD", ""),
		FallbackNotifyEmail: get("FALLBACK_NOTIFY_EMAIL", "orders@hidaaya.store"),
		NotifyFunctionURL:   get("NOTIFY_FUNCTION_URL", ""),
		FunctionsSecret:     get("FUNCTIONS_SECRET", ""),

		ReportSchedule: get("REPORT_SCHEDULE", "0 8 * * *"),

		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-1.5-flash"),

		LogLevel: get("LOG_LEVEL", "info"),
		LogFile:  get("LOG_FILE", ""),
	}

	if cfg.DatabaseDSN == "" {
		return cfg, errors.New("config: DB_DSN_PRIMARY is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: JWT_SECRET is required")
	}
	if cfg.NotifyFunctionURL != "" && cfg.FunctionsSecret == "" {
		return cfg, errors.New("config: FUNCTIONS_SECRET is required when NOTIFY_FUNCTION_URL is set")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cfg.JWTSecret
	}
	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = 587
	}
	return cfg, nil
}

// PaymentVerificationEnabled reports whether completed payments are checked with the gateway.
func (c Config) PaymentVerificationEnabled() bool {
	return c.PaystackSecretKey != ""
}
