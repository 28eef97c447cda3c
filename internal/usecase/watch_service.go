package usecase

import (
	"context"
	"fmt"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"
)

// WatchService turns a live cached search result into a price watch and
// manages watches on behalf of their owners. It is the only watch writer
// besides the scheduler, and the two never touch the same id: a watch is
// created here once and thereafter owned by the scheduler.
type WatchService struct {
	cacheRepo repository.SearchCacheRepository
	watchRepo repository.WatchRepository
	logger    logger.Logger
	now       func() time.Time
}

// NewWatchService creates a new watch service.
func NewWatchService(cacheRepo repository.SearchCacheRepository, watchRepo repository.WatchRepository, logger logger.Logger) *WatchService {
	return &WatchService{
		cacheRepo: cacheRepo,
		watchRepo: watchRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateFromCache seeds a watch from the headline offer of a cached
// bundle. Returns repository.ErrNotFound when the cache entry already
// expired; the caller should ask the user to search again.
func (s *WatchService) CreateFromCache(ctx context.Context, userID int64, cacheID string, threshold int) (string, *entity.WatchEntry, error) {
	bundle, err := s.cacheRepo.Get(ctx, cacheID)
	if err != nil {
		return "", nil, err
	}

	headline := bundle.Offers[entity.CheapestOffer(bundle.Offers)]
	if threshold < 0 {
		threshold = 0
	}

	dest := bundle.DestIATA
	if dest == "" {
		dest = headline.Destination
	}

	watch := &entity.WatchEntry{
		UserID:        userID,
		Origin:        headline.Origin,
		Dest:          dest,
		DepartDate:    bundle.DepartDate,
		ReturnDate:    bundle.ReturnDate,
		PassengerCode: bundle.PassengerCode,
		LastPrice:     headline.EffectivePrice(),
		Threshold:     threshold,
		CreatedAt:     s.now().Unix(),
	}

	id, err := s.watchRepo.Create(ctx, watch)
	if err != nil {
		return "", nil, fmt.Errorf("create watch: %w", err)
	}
	return id, watch, nil
}

// ListForUser returns all live watches owned by a user, keyed by id.
func (s *WatchService) ListForUser(ctx context.Context, userID int64) (map[string]*entity.WatchEntry, error) {
	return s.watchRepo.ListByUser(ctx, userID)
}

// Remove deletes a watch at its owner's request. Ownership is verified
// so one user cannot drop another user's watch by guessing ids.
func (s *WatchService) Remove(ctx context.Context, userID int64, id string) error {
	watch, err := s.watchRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if watch.UserID != userID {
		return repository.ErrNotFound
	}
	return s.watchRepo.Delete(ctx, userID, id)
}
