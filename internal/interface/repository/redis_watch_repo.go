package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisWatchRepository implements WatchRepository on Redis. Each watch
// lives under its own key plus a per-user index set used for listing;
// the store TTL is the 30-day expiry backstop.
type RedisWatchRepository struct {
	client *redis.Client
	logger logger.Logger
	ttl    time.Duration
}

// NewRedisWatchRepository creates a new Redis watch repository.
func NewRedisWatchRepository(client *redis.Client, ttl time.Duration, logger logger.Logger) repository.WatchRepository {
	return &RedisWatchRepository{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Create stores a new watch under a fresh opaque id and indexes it for
// its owner.
func (r *RedisWatchRepository) Create(ctx context.Context, watch *entity.WatchEntry) (string, error) {
	watch.Version = entity.WatchVersion
	data, err := json.Marshal(watch)
	if err != nil {
		return "", fmt.Errorf("marshal watch: %w", err)
	}

	id := uuid.NewString()
	if err := r.client.Set(ctx, watchKeyPrefix+id, data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store watch: %w", err)
	}
	if err := r.client.SAdd(ctx, userWatchKey(watch.UserID), id).Err(); err != nil {
		r.logger.Warn("Failed to index watch for user", "watchId", id, "userId", watch.UserID, "error", err)
	}

	r.logger.Info("Watch created",
		"watchId", id,
		"userId", watch.UserID,
		"route", watch.Origin+"-"+watch.Dest,
		"departDate", watch.DepartDate,
		"threshold", watch.Threshold)
	return id, nil
}

// Get loads a watch by id. Absent, expired and unreadable records all
// answer ErrNotFound.
func (r *RedisWatchRepository) Get(ctx context.Context, id string) (*entity.WatchEntry, error) {
	data, err := r.client.Get(ctx, watchKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("load watch: %w", err)
	}

	var watch entity.WatchEntry
	if err := json.Unmarshal([]byte(data), &watch); err != nil {
		r.logger.Warn("Dropping malformed watch record", "watchId", id, "error", err)
		r.client.Del(ctx, watchKeyPrefix+id)
		return nil, repository.ErrNotFound
	}
	if watch.Version != entity.WatchVersion {
		r.logger.Warn("Dropping watch record with unknown version", "watchId", id, "version", watch.Version)
		r.client.Del(ctx, watchKeyPrefix+id)
		return nil, repository.ErrNotFound
	}

	return &watch, nil
}

// Update overwrites a watch in place, refreshing its TTL backstop.
func (r *RedisWatchRepository) Update(ctx context.Context, id string, watch *entity.WatchEntry) error {
	watch.Version = entity.WatchVersion
	data, err := json.Marshal(watch)
	if err != nil {
		return fmt.Errorf("marshal watch: %w", err)
	}
	if err := r.client.Set(ctx, watchKeyPrefix+id, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("update watch: %w", err)
	}
	return nil
}

// Delete removes a watch and its index entry.
func (r *RedisWatchRepository) Delete(ctx context.Context, userID int64, id string) error {
	if err := r.client.Del(ctx, watchKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete watch: %w", err)
	}
	if err := r.client.SRem(ctx, userWatchKey(userID), id).Err(); err != nil {
		r.logger.Warn("Failed to unindex watch", "watchId", id, "userId", userID, "error", err)
	}
	r.logger.Info("Watch deleted", "watchId", id, "userId", userID)
	return nil
}

// ListIDs enumerates all live watch ids for the scheduler.
func (r *RedisWatchRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, watchKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), watchKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan watches: %w", err)
	}
	return ids, nil
}

// ListByUser returns all live watches owned by one user, keyed by id.
// Index members whose watch already expired are pruned as encountered.
func (r *RedisWatchRepository) ListByUser(ctx context.Context, userID int64) (map[string]*entity.WatchEntry, error) {
	ids, err := r.client.SMembers(ctx, userWatchKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user watches: %w", err)
	}

	watches := make(map[string]*entity.WatchEntry, len(ids))
	for _, id := range ids {
		watch, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				r.client.SRem(ctx, userWatchKey(userID), id)
				continue
			}
			return nil, err
		}
		watches[id] = watch
	}
	return watches, nil
}

func userWatchKey(userID int64) string {
	return userWatchPrefix + strconv.FormatInt(userID, 10)
}
