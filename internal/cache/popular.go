package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"filmrate/internal/config"
	"filmrate/internal/domain"
)

const popularKeyPrefix = "films:popular:"

func Open(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Popular caches popular-films rankings per requested limit. Entries
// expire after the TTL and are dropped eagerly whenever a like or film
// write changes the ranking. Cache failures only cost a store round trip.
type Popular struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewPopular(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Popular {
	if logger == nil {
		logger = slog.Default()
	}
	return &Popular{client: client, ttl: ttl, logger: logger}
}

func (c *Popular) Get(ctx context.Context, limit int) ([]domain.Film, bool) {
	raw, err := c.client.Get(ctx, c.key(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("popular cache get failed", "err", err)
		}
		return nil, false
	}

	var films []domain.Film
	if err := json.Unmarshal(raw, &films); err != nil {
		c.logger.Warn("popular cache entry corrupt", "err", err)
		return nil, false
	}
	return films, true
}

func (c *Popular) Set(ctx context.Context, limit int, films []domain.Film) {
	raw, err := json.Marshal(films)
	if err != nil {
		c.logger.Warn("popular cache marshal failed", "err", err)
		return
	}
	if err := c.client.Set(ctx, c.key(limit), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("popular cache set failed", "err", err)
	}
}

func (c *Popular) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, popularKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("popular cache invalidate failed", "key", iter.Val(), "err", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("popular cache scan failed", "err", err)
	}
}

func (c *Popular) key(limit int) string {
	return fmt.Sprintf("%s%d", popularKeyPrefix, limit)
}
