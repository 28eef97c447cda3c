package usecase

import (
	"context"
	"testing"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatchService(cacheRepo *fakeCacheRepo, watchRepo *fakeWatchRepo) *WatchService {
	s := NewWatchService(cacheRepo, watchRepo, logger.NopLogger{})
	s.now = func() time.Time { return watcherNow }
	return s
}

func seedBundle(t *testing.T, cacheRepo *fakeCacheRepo) string {
	t.Helper()
	id, err := cacheRepo.Put(context.Background(), &entity.SearchResultBundle{
		Version:    entity.SearchBundleVersion,
		OriginIATA: "MOW",
		DestIATA:   "IST",
		DepartDate: "15.07",
		ReturnDate: "22.07",
		Offers: []entity.FareOffer{
			{Origin: "MOW", Destination: "IST", Value: 12000},
			{Origin: "MOW", Destination: "IST", Value: 9500},
		},
		PassengerCode: "21",
		IsRoundTrip:   true,
	}, time.Hour)
	require.NoError(t, err)
	return id
}

func TestCreateFromCache(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	watchRepo := newFakeWatchRepo()
	s := newTestWatchService(cacheRepo, watchRepo)
	cacheID := seedBundle(t, cacheRepo)

	id, watch, err := s.CreateFromCache(context.Background(), 42, cacheID, 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// The watch is seeded from the headline (cheapest) offer.
	assert.Equal(t, int64(42), watch.UserID)
	assert.Equal(t, "MOW", watch.Origin)
	assert.Equal(t, "IST", watch.Dest)
	assert.Equal(t, "15.07", watch.DepartDate)
	assert.Equal(t, "22.07", watch.ReturnDate)
	assert.Equal(t, "21", watch.PassengerCode)
	assert.Equal(t, 9500, watch.LastPrice)
	assert.Equal(t, 1000, watch.Threshold)
	assert.Equal(t, watcherNow.Unix(), watch.CreatedAt)

	stored, err := watchRepo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, watch.LastPrice, stored.LastPrice)
}

func TestCreateFromCache_DestFromHeadlineWhenEverywhere(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	s := newTestWatchService(cacheRepo, newFakeWatchRepo())

	cacheID, err := cacheRepo.Put(context.Background(), &entity.SearchResultBundle{
		Version:        entity.SearchBundleVersion,
		OriginIATA:     "MOW",
		DestEverywhere: true,
		DepartDate:     "15.07",
		Offers: []entity.FareOffer{
			{Origin: "MOW", Destination: "LED", Value: 4000},
			{Origin: "MOW", Destination: "KZN", Value: 3500},
		},
		PassengerCode: "1",
	}, time.Hour)
	require.NoError(t, err)

	_, watch, err := s.CreateFromCache(context.Background(), 42, cacheID, 0)
	require.NoError(t, err)
	assert.Equal(t, "KZN", watch.Dest, "everywhere watches pin the headline destination")
}

func TestCreateFromCache_NegativeThresholdClamped(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	s := newTestWatchService(cacheRepo, newFakeWatchRepo())
	cacheID := seedBundle(t, cacheRepo)

	_, watch, err := s.CreateFromCache(context.Background(), 42, cacheID, -5)
	require.NoError(t, err)
	assert.Zero(t, watch.Threshold)
}

func TestCreateFromCache_ExpiredBundle(t *testing.T) {
	s := newTestWatchService(newFakeCacheRepo(), newFakeWatchRepo())
	_, _, err := s.CreateFromCache(context.Background(), 42, "long-gone", 0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	watchRepo := newFakeWatchRepo()
	s := newTestWatchService(newFakeCacheRepo(), watchRepo)

	_, err := watchRepo.Create(context.Background(), testWatch(15000, 0))
	require.NoError(t, err)
	other := testWatch(12000, 0)
	other.UserID = 99
	_, err = watchRepo.Create(context.Background(), other)
	require.NoError(t, err)

	watches, err := s.ListForUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, watches, 1)
}

func TestRemove(t *testing.T) {
	watchRepo := newFakeWatchRepo()
	s := newTestWatchService(newFakeCacheRepo(), watchRepo)
	id, err := watchRepo.Create(context.Background(), testWatch(15000, 0))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), 42, id))
	_, err = watchRepo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemove_WrongOwner(t *testing.T) {
	watchRepo := newFakeWatchRepo()
	s := newTestWatchService(newFakeCacheRepo(), watchRepo)
	id, err := watchRepo.Create(context.Background(), testWatch(15000, 0))
	require.NoError(t, err)

	// A foreign id behaves exactly like a missing one.
	assert.ErrorIs(t, s.Remove(context.Background(), 99, id), repository.ErrNotFound)
	_, err = watchRepo.Get(context.Background(), id)
	assert.NoError(t, err)
}
