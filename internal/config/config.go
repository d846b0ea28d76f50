package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the washdesk server configuration, read from WASHDESK_* variables.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"washdesk.db"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// WebSocket origins allowed to connect, e.g. "admin.example.com".
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Reverse proxies (CIDRs or addresses) whose X-Forwarded-For is believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Stripe   StripeConfig   `envPrefix:"STRIPE_"`
	Push     PushConfig     `envPrefix:"VAPID_"`
	Postmark PostmarkConfig `envPrefix:"POSTMARK_"`
	Archive  ArchiveConfig  `envPrefix:"S3_"`
}

type AuthConfig struct {
	Username string `env:"USERNAME" envDefault:"admin"`
	// Bcrypt hash of the admin password.
	PasswordHash string        `env:"PASSWORD_HASH"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
}

type StripeConfig struct {
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type PushConfig struct {
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	Subscriber string `env:"SUBSCRIBER" envDefault:"ops@washdesk.app"`
}

type PostmarkConfig struct {
	ServerToken  string `env:"SERVER_TOKEN"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"noreply@washdesk.app"`
	SupportEmail string `env:"SUPPORT_EMAIL"`
}

type ArchiveConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION" envDefault:"auto"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
}

// Enabled reports whether report archiving has enough settings to run.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

var ErrMissingJWTSecret = errors.New("WASHDESK_AUTH_JWT_SECRET is required")

// Load reads an optional .env file (or the given files) and parses the
// environment into a Config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// A missing .env is fine.
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "WASHDESK_"})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}
