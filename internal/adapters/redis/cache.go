package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/domain"
)

const keyPrefix = "attorneys:"

// Cache keeps result sets in redis so several API processes can share them.
// Expiry uses native redis TTLs; capacity is left to the server's maxmemory
// policy.
type Cache struct {
	c         *redis.Client
	ttl       time.Duration
	precision int
}

func New(addr, pass string, db int, ttl time.Duration, precision int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl, precision)
}

func NewWithClient(c *redis.Client, ttl time.Duration, precision int) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if precision <= 0 {
		precision = domain.DefaultKeyPrecision
	}
	return &Cache{c: c, ttl: ttl, precision: precision}
}

func (r *Cache) key(lat, lng, radiusKm float64) string {
	return keyPrefix + domain.CacheKey(lat, lng, radiusKm, r.precision)
}

// Get treats redis errors and undecodable payloads as a miss.
func (r *Cache) Get(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Attorney, bool) {
	k := r.key(lat, lng, radiusKm)
	v, err := r.c.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", k).Msg("redis get failed")
		observability.ObserveCache("redis", "miss")
		return nil, false
	}
	var out []domain.Attorney
	if err := json.Unmarshal(v, &out); err != nil {
		log.Warn().Err(err).Str("key", k).Msg("dropping corrupt cache entry")
		_ = r.c.Del(ctx, k).Err()
		observability.ObserveCache("redis", "miss")
		return nil, false
	}
	observability.ObserveCache("redis", "hit")
	return out, true
}

func (r *Cache) Set(ctx context.Context, lat, lng, radiusKm float64, data []domain.Attorney, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("marshal cache entry failed")
		return
	}
	observability.ObserveCache("redis", "set")
	if err := r.c.Set(ctx, r.key(lat, lng, radiusKm), b, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("redis set failed")
	}
}

func (r *Cache) Has(ctx context.Context, lat, lng, radiusKm float64) bool {
	n, err := r.c.Exists(ctx, r.key(lat, lng, radiusKm)).Result()
	return err == nil && n > 0
}

func (r *Cache) Delete(ctx context.Context, lat, lng, radiusKm float64) {
	observability.ObserveCache("redis", "del")
	if err := r.c.Del(ctx, r.key(lat, lng, radiusKm)).Err(); err != nil {
		log.Warn().Err(err).Msg("redis del failed")
	}
}

// Clear removes every attorney entry, leaving other keys alone.
func (r *Cache) Clear(ctx context.Context) {
	var keys []string
	iter := r.c.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("redis scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.c.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("redis clear failed")
	}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }
