package repository

import (
	"context"
	"errors"
	"fmt"

	"prediction-dashboard/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TypeRedis selects the Redis history backend.
const TypeRedis = "redis"

const redisKeyPrefix = "history:"

// RedisHistoryRepository stores each variant's log under history:<variant>.
type RedisHistoryRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisHistoryRepository creates a new Redis backed repository
func NewRedisHistoryRepository(client *redis.Client, logger *zap.Logger) *RedisHistoryRepository {
	return &RedisHistoryRepository{client: client, logger: logger}
}

// LoadAll reads the log of every known variant. Missing keys are skipped.
func (r *RedisHistoryRepository) LoadAll(ctx context.Context) (map[models.ModelVariant][]byte, error) {
	out := make(map[models.ModelVariant][]byte, len(models.Variants))
	for _, v := range models.Variants {
		data, err := r.client.Get(ctx, redisKeyPrefix+string(v)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read history for %s: %w", v, err)
		}
		out[v] = data
	}
	return out, nil
}

// Save replaces the stored log of one variant.
func (r *RedisHistoryRepository) Save(ctx context.Context, variant models.ModelVariant, data []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+string(variant), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	r.logger.Debug("History saved", zap.String("model", string(variant)), zap.Int("bytes", len(data)))
	return nil
}

// Close closes the Redis client.
func (r *RedisHistoryRepository) Close() error {
	return r.client.Close()
}
