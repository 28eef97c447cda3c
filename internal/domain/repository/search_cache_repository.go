package repository

import (
	"context"
	"time"

	"farewatch-service/internal/domain/entity"
)

// SearchCacheRepository stores search result bundles under fresh opaque
// ids with a bounded lifetime. Expiry is a hard deletion: Get after the
// TTL elapses returns ErrNotFound.
type SearchCacheRepository interface {
	Put(ctx context.Context, bundle *entity.SearchResultBundle, ttl time.Duration) (string, error)
	Get(ctx context.Context, id string) (*entity.SearchResultBundle, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
