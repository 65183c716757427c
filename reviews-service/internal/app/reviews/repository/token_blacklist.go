package repository

import (
	"context"
	"fmt"

	"storereviews/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// redisTokenBlacklist читает черный список, который ведет Auth Service при logout
type redisTokenBlacklist struct {
	client *redis.Client
}

func NewRedisTokenBlacklist(client *redis.Client) TokenBlacklist {
	return &redisTokenBlacklist{client: client}
}

// IsBlacklisted проверяет, находится ли токен в черном списке
func (r *redisTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	// Ключ формата: blacklist:<token>
	key := fmt.Sprintf("blacklist:%s", token)

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpExists)
	exists, err := r.client.Exists(ctx, key).Result()
	timer.ObserveDuration()

	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpExists)
		return false, fmt.Errorf("failed to check if token is blacklisted: %w", err)
	}

	return exists > 0, nil
}
