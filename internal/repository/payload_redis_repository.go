package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/models"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// RedisPayloadRepository stores last good payloads in Redis.
type RedisPayloadRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPayloadRepository constructs the store. A positive ttl lets Redis expire entries that
// are too old to serve as a fallback anyway; zero keeps them until overwritten.
func NewRedisPayloadRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPayloadRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPayloadRepository{client: client, ttl: ttl, logger: logger}
}

// Get loads the payload stored under fingerprint.
func (r *RedisPayloadRepository) Get(ctx context.Context, fingerprint string) (*models.CachedPayload, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, fingerprint).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", fingerprint, err)
	}
	var payload models.CachedPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cached payload %s: %w", fingerprint, err)
	}
	return &payload, nil
}

// Put overwrites the entry for payload.Fingerprint.
func (r *RedisPayloadRepository) Put(ctx context.Context, payload models.CachedPayload) error {
	if r.client == nil {
		return nil
	}
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal cached payload %s: %w", payload.Fingerprint, err)
	}
	if err := r.client.Set(ctx, payload.Fingerprint, encoded, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", payload.Fingerprint, err)
	}
	return nil
}

// DeleteByPattern removes every key matching the glob pattern.
func (r *RedisPayloadRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	deleted := 0
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	r.logger.Debug("cached payloads deleted", zap.String("pattern", pattern), zap.Int("count", deleted))
	return nil
}

// Ping checks the connection for readiness probes.
func (r *RedisPayloadRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (r *RedisPayloadRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
