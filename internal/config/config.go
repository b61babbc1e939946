package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// хранилище профилей и истории
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`

	BotToken  string `env:"BOT_TOKEN"`
	BotChatID int64  `env:"BOT_CHAT_ID"`

	AllowedOrigin      string `env:"ALLOWED_ORIGIN"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// уборка зависших сессий
	ReapEvery   time.Duration `env:"REAP_EVERY" envDefault:"1m"`
	SessionIdle time.Duration `env:"SESSION_IDLE" envDefault:"15m"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет что для выбранного хранилища есть адрес
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres требует DATABASE_URL")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STORE_BACKEND=redis требует REDIS_ADDR")
		}
	default:
		return fmt.Errorf("неизвестный STORE_BACKEND %q", c.StoreBackend)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE не может быть отрицательным")
	}
	return nil
}

// BotEnabled - настроены ли уведомления в Telegram
func (c *Config) BotEnabled() bool {
	return c.BotToken != "" && c.BotChatID != 0
}
