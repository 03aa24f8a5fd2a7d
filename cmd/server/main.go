// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/twinkleshop/shopapp-orders/internal/adapters/httpapi"
	rediscache "github.com/twinkleshop/shopapp-orders/internal/adapters/redis"
	"github.com/twinkleshop/shopapp-orders/internal/adapters/repository"
	"github.com/twinkleshop/shopapp-orders/internal/config"
	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open DB")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping DB")
	}

	cache := rediscache.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err := cache.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	if err := initDB(db); err != nil {
		log.Fatal().Err(err).Msg("failed to init DB")
	}
	seedAdmin(db, cfg, log)

	repo := repository.NewPostgresRepository(db)
	srv := httpapi.NewServer(repo, cache, []byte(cfg.JWTSecret), cfg.TokenTTL, log)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("order API listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, srv.Router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func initDB(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			phone_number VARCHAR(20) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'customer'
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			status VARCHAR(20) NOT NULL,
			order_date TIMESTAMP NOT NULL,
			shipping_date TIMESTAMP,
			phone_number VARCHAR(20) NOT NULL,
			recipient_name VARCHAR(255),
			recipient_address TEXT,
			total_money FLOAT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id BIGINT REFERENCES orders(id),
			product_id BIGINT NOT NULL,
			quantity BIGINT NOT NULL,
			price FLOAT NOT NULL,
			thumbnail VARCHAR(255)
		)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *sql.DB, cfg config.Config, log zerolog.Logger) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash admin password")
		return
	}
	_, err = db.Exec(
		"INSERT INTO users (phone_number, password, role) VALUES ($1, $2, $3) ON CONFLICT (phone_number) DO NOTHING",
		cfg.AdminPhone, string(hashed), domain.RoleAdmin,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to seed admin user")
	}
}
