package staging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the staging store with a shared cache so staged sessions
// survive process restarts. TTL enforcement is native.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Connect picks the backing store: Redis when an address is configured and
// reachable, otherwise the in-process fallback. Degradation is silent to
// callers; staged data just becomes process-lifetime-bound.
func Connect(ctx context.Context, redisAddr, redisPassword string, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	if redisAddr == "" {
		logger.Info("staging.store.memory", "reason", "no redis address configured")
		return NewMemoryStore(0)
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("staging.store.redis_unreachable", "addr", redisAddr, "error", err)
		_ = client.Close()
		return NewMemoryStore(0)
	}
	logger.Info("staging.store.redis", "addr", redisAddr)
	return NewRedisStore(client)
}
