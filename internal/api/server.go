package api

import (
	"os"
	"strings"
	"time"

	"gpsnav/internal/config"
	"gpsnav/internal/store"
	"gpsnav/internal/stream"
)

// Server bundles the HTTP surface's dependencies.
type Server struct {
	Store  store.Store
	Cache  store.MatrixCache
	Config config.Engine
	Broker *stream.Broker
}

// NewServer creates a Server. If DATABASE_URL is unset, it falls back to an
// in-memory store; if REDIS_URL is unset, matrix caching is disabled.
func NewServer(cfg config.Engine) (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		s = sp
	}

	var cache store.MatrixCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		ttl := cfg.MatrixCacheTTLSeconds
		rc, err := store.NewRedisMatrixCache(redisURL, secondsToDuration(ttl))
		if err == nil {
			cache = rc
		}
	}

	return &Server{Store: s, Cache: cache, Config: cfg, Broker: stream.NewBroker()}, nil
}

func secondsToDuration(n int) time.Duration {
	if n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}
