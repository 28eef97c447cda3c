package repository

import (
	"context"
	"fmt"
	"strconv"

	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisUserRepository tracks first-time users in a Redis set.
type RedisUserRepository struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisUserRepository creates a new Redis user repository.
func NewRedisUserRepository(client *redis.Client, logger logger.Logger) repository.UserRepository {
	return &RedisUserRepository{
		client: client,
		logger: logger,
	}
}

// FirstSeen marks the user as seen and reports whether this was their
// first interaction.
func (r *RedisUserRepository) FirstSeen(ctx context.Context, userID int64) (bool, error) {
	member := strconv.FormatInt(userID, 10)
	exists, err := r.client.SIsMember(ctx, firstSeenKey, member).Result()
	if err != nil {
		return false, fmt.Errorf("check first seen: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := r.client.SAdd(ctx, firstSeenKey, member).Err(); err != nil {
		return false, fmt.Errorf("mark first seen: %w", err)
	}
	return true, nil
}
