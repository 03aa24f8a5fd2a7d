// internal/config/config.go
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"shopapp-orders"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8088"`

	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"host=localhost port=5432 user=postgres password=postgres dbname=shopapp sslmode=disable"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Client side: where the order API lives and where the session credential
	// is persisted between runs.
	APIBaseURL  string `env:"API_BASE_URL" envDefault:"http://localhost:8088"`
	SessionFile string `env:"SESSION_FILE" envDefault:".shopapp-session.json"`

	AdminPhone    string `env:"ADMIN_PHONE" envDefault:"0909090909"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

func Load() (Config, error) {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
