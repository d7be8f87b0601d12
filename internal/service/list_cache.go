package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/univdir/universities-api/internal/domain"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ListCache caches university list pages. Implementations must treat a
// miss and an unavailable backend the same way: return ok=false and let
// the caller hit the database.
type ListCache interface {
	Get(ctx context.Context, country string, page repository.PageRequest) (*repository.PageResult[domain.University], bool)
	Set(ctx context.Context, country string, page repository.PageRequest, result *repository.PageResult[domain.University])
	Invalidate(ctx context.Context)
}

type RedisListCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisListCache(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisListCache {
	return &RedisListCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *RedisListCache) key(country string, page repository.PageRequest) string {
	return fmt.Sprintf("%s:universities:list:%s:%d:%d",
		c.prefix, strings.ToLower(country), page.Page, page.Limit)
}

func (c *RedisListCache) Get(ctx context.Context, country string, page repository.PageRequest) (*repository.PageResult[domain.University], bool) {
	raw, err := c.client.Get(ctx, c.key(country, page)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("list cache read failed", "error", err)
		}
		observability.RecordListCacheEvent(ctx, "miss")
		return nil, false
	}
	var res repository.PageResult[domain.University]
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("list cache entry corrupt", "error", err)
		observability.RecordListCacheEvent(ctx, "miss")
		return nil, false
	}
	observability.RecordListCacheEvent(ctx, "hit")
	return &res, true
}

func (c *RedisListCache) Set(ctx context.Context, country string, page repository.PageRequest, result *repository.PageResult[domain.University]) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(country, page), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("list cache write failed", "error", err)
	}
}

// Invalidate drops every cached page. Called after any university write
// so list responses never serve stale rows past a mutation.
func (c *RedisListCache) Invalidate(ctx context.Context) {
	pattern := c.prefix + ":universities:list:*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("list cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("list cache invalidation failed", "error", err)
		return
	}
	observability.RecordListCacheEvent(ctx, "invalidate")
}

// NoopListCache is used when Redis is disabled.
type NoopListCache struct{}

func (NoopListCache) Get(context.Context, string, repository.PageRequest) (*repository.PageResult[domain.University], bool) {
	return nil, false
}
func (NoopListCache) Set(context.Context, string, repository.PageRequest, *repository.PageResult[domain.University]) {
}
func (NoopListCache) Invalidate(context.Context) {}
