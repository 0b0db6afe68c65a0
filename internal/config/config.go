package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Addr     string
	DBDSN    string
	LogLevel string

	// DBMaxConns caps the postgres pool size; 0 keeps the driver default.
	DBMaxConns int

	Redis           RedisConfig
	PopularCacheTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from the environment, after merging in a .env
// file when one exists in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:      getenv("APP_ENV"),
		Addr:     getenv("APP_ADDR"),
		DBDSN:    getenv("APP_DB_DSN"),
		LogLevel: getenv("APP_LOG_LEVEL"),
		Redis: RedisConfig{
			Addr:     getenv("APP_REDIS_ADDR"),
			Password: getenv("APP_REDIS_PASSWORD"),
		},
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	if raw := getenv("APP_DB_MAX_CONNS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_DB_MAX_CONNS: %w", err)
		}
		if n <= 0 {
			return Config{}, errors.New("APP_DB_MAX_CONNS: must be > 0")
		}
		cfg.DBMaxConns = n
	}

	if raw := getenv("APP_REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	ttlRaw := getenv("APP_POPULAR_CACHE_TTL")
	if ttlRaw == "" {
		cfg.PopularCacheTTL = time.Minute
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_POPULAR_CACHE_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_POPULAR_CACHE_TTL: must be > 0")
		}
		cfg.PopularCacheTTL = ttl
	}

	if cfg.IsProd() && cfg.DBDSN == "" {
		return Config{}, errors.New("APP_DB_DSN: required in prod")
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }
