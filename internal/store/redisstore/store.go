package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps the redis client used for short-lived caches.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func weatherKey(location string) string { return "weather:" + location }

// GetWeather returns the cached weather payload for a location, redis.Nil
// when absent.
func (s *Store) GetWeather(ctx context.Context, location string) (string, error) {
	return s.rdb.Get(ctx, weatherKey(location)).Result()
}

func (s *Store) SetWeather(ctx context.Context, location, payload string, ttl time.Duration) error {
	return s.rdb.Set(ctx, weatherKey(location), payload, ttl).Err()
}
