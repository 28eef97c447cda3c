package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// WatchRepository persists price watch entries. Entries live 30 days from
// their last update as a backstop; the scheduler refreshes the TTL each
// time it persists a new price. Get returns ErrNotFound for absent,
// expired or unreadable records.
type WatchRepository interface {
	Create(ctx context.Context, watch *entity.WatchEntry) (string, error)
	Get(ctx context.Context, id string) (*entity.WatchEntry, error)
	Update(ctx context.Context, id string, watch *entity.WatchEntry) error
	Delete(ctx context.Context, userID int64, id string) error
	ListIDs(ctx context.Context) ([]string, error)
	ListByUser(ctx context.Context, userID int64) (map[string]*entity.WatchEntry, error)
}
