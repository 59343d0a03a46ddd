package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	WhatsApp  WhatsAppConfig  `envPrefix:"WHATSAPP_"`
	Telegram  TelegramConfig  `envPrefix:"TELEGRAM_"`
	Pricing   PricingConfig   `envPrefix:"PRICING_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://uredno.eu"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,notEmpty"`
	Password        string        `env:"PASSWORD,notEmpty"`
	Name            string        `env:"NAME" envDefault:"uredno"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"1h"`
}

type WhatsAppConfig struct {
	WebhookURL string        `env:"WEBHOOK_URL"`
	Token      string        `env:"TOKEN"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxElapsed time.Duration `env:"MAX_ELAPSED" envDefault:"30s"`
}

type TelegramConfig struct {
	Token     string  `env:"TOKEN"`
	AdminIDs  []int64 `env:"ADMIN_IDS" envSeparator:","`
	ChannelID int64   `env:"CHANNEL_ID"`
}

type PricingConfig struct {
	DistanceSchedule string  `env:"DISTANCE_SCHEDULE" envDefault:"tiered"`
	OriginLat        float64 `env:"ORIGIN_LAT" envDefault:"45.8150"`
	OriginLng        float64 `env:"ORIGIN_LNG" envDefault:"15.9819"`
}

type RateLimitConfig struct {
	Backend string        `env:"BACKEND" envDefault:"memory"`
	Limit   int           `env:"LIMIT" envDefault:"20"`
	Window  time.Duration `env:"WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if c.Telegram.Token != "" && len(c.Telegram.AdminIDs) == 0 {
		return fmt.Errorf("at least one admin ID is required when the telegram bot is enabled")
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}
	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
	}
	return nil
}

// DSN returns a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
