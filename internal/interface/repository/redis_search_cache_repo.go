package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSearchCacheRepository implements SearchCacheRepository on Redis.
// Ids are random UUIDs; expiry is delegated to Redis key TTLs so an
// expired bundle is gone, not merely stale.
type RedisSearchCacheRepository struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisSearchCacheRepository creates a new Redis search cache repository.
func NewRedisSearchCacheRepository(client *redis.Client, logger logger.Logger) repository.SearchCacheRepository {
	return &RedisSearchCacheRepository{
		client: client,
		logger: logger,
	}
}

// Put stores the bundle under a fresh opaque id with the given TTL.
func (r *RedisSearchCacheRepository) Put(ctx context.Context, bundle *entity.SearchResultBundle, ttl time.Duration) (string, error) {
	bundle.Version = entity.SearchBundleVersion
	data, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("marshal search bundle: %w", err)
	}

	id := uuid.NewString()
	if err := r.client.Set(ctx, searchKeyPrefix+id, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("store search bundle: %w", err)
	}

	r.logger.Debug("Search bundle cached", "cacheId", id, "offers", len(bundle.Offers), "ttl", ttl.String())
	return id, nil
}

// Get loads a bundle by id. Absent, expired and unreadable records all
// answer ErrNotFound; unreadable ones are deleted on the way out.
func (r *RedisSearchCacheRepository) Get(ctx context.Context, id string) (*entity.SearchResultBundle, error) {
	data, err := r.client.Get(ctx, searchKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("load search bundle: %w", err)
	}

	var bundle entity.SearchResultBundle
	if err := json.Unmarshal([]byte(data), &bundle); err != nil {
		r.logger.Warn("Dropping malformed search bundle", "cacheId", id, "error", err)
		r.client.Del(ctx, searchKeyPrefix+id)
		return nil, repository.ErrNotFound
	}
	if bundle.Version != entity.SearchBundleVersion {
		r.logger.Warn("Dropping search bundle with unknown version", "cacheId", id, "version", bundle.Version)
		r.client.Del(ctx, searchKeyPrefix+id)
		return nil, repository.ErrNotFound
	}

	return &bundle, nil
}

// Delete removes a bundle by id.
func (r *RedisSearchCacheRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, searchKeyPrefix+id).Err()
}

// Count returns the number of live cache entries. Diagnostic only.
func (r *RedisSearchCacheRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, searchKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan search cache: %w", err)
	}
	return count, nil
}
