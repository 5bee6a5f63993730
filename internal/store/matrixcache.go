package store

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"gpsnav/internal/routing"
)

// RedisMatrixCache caches duration/cost/distance matrices in Redis, keyed
// by a caller-chosen string (the solve handler uses the profile name).
// Matrix computation is the expensive external step this cache exists to
// avoid repeating.
type RedisMatrixCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisMatrixCache opens a Redis client against url (e.g.
// "redis://host:6379/0") with entries expiring after ttl.
func NewRedisMatrixCache(url string, ttl time.Duration) (*RedisMatrixCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisMatrixCache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

type cachedMatrixTriple struct {
	N        int     `json:"n"`
	Duration []int64 `json:"duration"`
	Cost     []int64 `json:"cost"`
	Distance []int64 `json:"distance"`
}

func (c *RedisMatrixCache) Get(ctx context.Context, key string) (duration, cost, distance routing.Matrix, ok bool, err error) {
	raw, getErr := c.rdb.Get(ctx, c.cacheKey(key)).Bytes()
	if getErr == redis.Nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, false, nil
	}
	if getErr != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, false, getErr
	}
	var t cachedMatrixTriple
	if err := json.Unmarshal(raw, &t); err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, false, err
	}
	duration = matrixFromFlat(t.N, t.Duration)
	cost = matrixFromFlat(t.N, t.Cost)
	distance = matrixFromFlat(t.N, t.Distance)
	return duration, cost, distance, true, nil
}

func (c *RedisMatrixCache) Set(ctx context.Context, key string, duration, cost, distance routing.Matrix) error {
	n := duration.Size()
	t := cachedMatrixTriple{
		N:        n,
		Duration: duration.Flatten(),
		Cost:     cost.Flatten(),
		Distance: distance.Flatten(),
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.cacheKey(key), data, c.ttl).Err()
}

func (c *RedisMatrixCache) cacheKey(key string) string { return "matrix:" + key }

func matrixFromFlat(n int, data []int64) routing.Matrix {
	m := routing.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, data[i*n+j])
		}
	}
	return m
}
