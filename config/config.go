package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        string `envconfig:"APP_ENV" default:"development" validate:"oneof=development production test"`
	Port       string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	AppURL     string `envconfig:"APP_URL" default:"http://localhost:3000" validate:"required,url"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://localhost:3000"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	DBDriver       string        `envconfig:"DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	DBURL          string        `envconfig:"DB_URL" required:"true" validate:"required"`
	DBMaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10" validate:"min=1"`
	DBSlowQuery    time.Duration `envconfig:"DB_SLOW_QUERY" default:"200ms"`

	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true" validate:"required,min=16"`
	JWTLifetime time.Duration `envconfig:"JWT_LIFETIME" default:"24h"`
	AdminEmails []string      `envconfig:"ADMIN_EMAILS"`

	GoogleClientID         string `envconfig:"GOOGLE_CLIENT_ID" required:"true" validate:"required"`
	GoogleClientSecret     string `envconfig:"GOOGLE_CLIENT_SECRET" required:"true" validate:"required"`
	GoogleRedirectURL      string `envconfig:"GOOGLE_REDIRECT_URL" required:"true" validate:"required,url"`
	GoogleFrontendRedirect string `envconfig:"GOOGLE_FRONTEND_REDIRECT"`

	StripeSecretKey        string        `envconfig:"STRIPE_SECRET_KEY" required:"true" validate:"required"`
	StripeWebhookSecret    string        `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true" validate:"required"`
	StripeWebhookTolerance time.Duration `envconfig:"STRIPE_WEBHOOK_TOLERANCE" default:"5m" validate:"min=1s"`
	StripeBloomPriceID     string        `envconfig:"STRIPE_BLOOM_PRICE_ID" required:"true" validate:"required"`
	StripeFullBloomPriceID string        `envconfig:"STRIPE_FULL_BLOOM_PRICE_ID" required:"true" validate:"required"`
	TrialPlanID            string        `envconfig:"TRIAL_PLAN_ID" default:"bloom"`
	TrialDays              int64         `envconfig:"TRIAL_DAYS" default:"7" validate:"min=0,max=730"`

	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY" required:"true" validate:"required"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" validate:"url"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAITimeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv decodes and validates the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e != "" && e == email {
			return true
		}
	}
	return false
}

func (c Config) Production() bool {
	return c.Env == "production"
}
