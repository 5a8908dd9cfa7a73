package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL    string `env:"DATABASE_URL,required" validate:"required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START"      envDefault:"false"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret        string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTTTL           time.Duration `env:"JWT_TTL"             envDefault:"168h" validate:"min=1m"`
	CookieTTL        time.Duration `env:"COOKIE_TTL"          envDefault:"168h" validate:"min=1m"`
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL"     envDefault:"30m"  validate:"min=1m"`
	ResetTokenPepper string        `env:"RESET_TOKEN_PEPPER"`
	ResetLinkBase    string        `env:"RESET_LINK_BASE_URL" envDefault:"http://localhost:8080"`

	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0" validate:"min=0,max=15"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	S3Bucket       string `env:"S3_BUCKET"        validate:"required_if=Env production,required_if=Env staging"`
	S3Region       string `env:"S3_REGION"        envDefault:"us-east-1"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"public/uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"2097152" validate:"min=1"`

	GeocoderURL    string  `env:"GEOCODER_URL"     envDefault:"https://www.mapquestapi.com/geocoding/v1/address" validate:"url"`
	GeocoderAPIKey string  `env:"GEOCODER_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	GeocoderRPS    float64 `env:"GEOCODER_RPS"     envDefault:"5" validate:"gt=0"`

	JanitorCron string `env:"JANITOR_CRON" envDefault:"@every 10m" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.ResetTokenPepper == "" {
		cfg.ResetTokenPepper = cfg.JWTSecret
	}

	return cfg, nil
}

// IsLocal reports whether the process runs in development mode, where
// collaborators are replaced by log/disk implementations and error
// responses carry full detail.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
