package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisVaultAttemptRepository struct {
	redis *redis.Client
}

func NewRedisVaultAttemptRepository(redisClient *redis.Client) *RedisVaultAttemptRepository {
	return &RedisVaultAttemptRepository{redis: redisClient}
}

func vaultFailureKey(userID uint) string {
	return fmt.Sprintf("vault:failures:%d", userID)
}

func (r *RedisVaultAttemptRepository) RegisterFailure(ctx context.Context, userID uint, windowSeconds int) (int64, error) {
	key := vaultFailureKey(userID)
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 && windowSeconds > 0 {
		if err := r.redis.Expire(ctx, key, time.Duration(windowSeconds)*time.Second).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *RedisVaultAttemptRepository) FailureCount(ctx context.Context, userID uint) (int64, error) {
	count, err := r.redis.Get(ctx, vaultFailureKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (r *RedisVaultAttemptRepository) Clear(ctx context.Context, userID uint) error {
	return r.redis.Del(ctx, vaultFailureKey(userID)).Err()
}
