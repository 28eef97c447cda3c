package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
	"farewatch-service/pkg/metrics"
)

// Registered once per test binary; promauto panics on re-registration.
var testMetrics = metrics.NewMetrics("farewatch_test")

type fareCall struct {
	Origin     string
	Dest       string
	DepartDate string
	ReturnDate string
}

type fakeFareRepo struct {
	offers map[string][]entity.FareOffer
	errs   map[string]error
	calls  []fareCall
}

func newFakeFareRepo() *fakeFareRepo {
	return &fakeFareRepo{
		offers: make(map[string][]entity.FareOffer),
		errs:   make(map[string]error),
	}
}

func routeKey(origin, dest string) string {
	return origin + "-" + dest
}

func (f *fakeFareRepo) Search(_ context.Context, origin, dest, departDate, returnDate string) ([]entity.FareOffer, error) {
	f.calls = append(f.calls, fareCall{origin, dest, departDate, returnDate})
	if err, ok := f.errs[routeKey(origin, dest)]; ok {
		return nil, err
	}
	return f.offers[routeKey(origin, dest)], nil
}

type fakeCacheRepo struct {
	bundles map[string]*entity.SearchResultBundle
	putErr  error
	nextID  int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{bundles: make(map[string]*entity.SearchResultBundle)}
}

func (f *fakeCacheRepo) Put(_ context.Context, bundle *entity.SearchResultBundle, _ time.Duration) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.nextID++
	id := fmt.Sprintf("cache-%d", f.nextID)
	f.bundles[id] = bundle
	return id, nil
}

func (f *fakeCacheRepo) Get(_ context.Context, id string) (*entity.SearchResultBundle, error) {
	bundle, ok := f.bundles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return bundle, nil
}

func (f *fakeCacheRepo) Delete(_ context.Context, id string) error {
	delete(f.bundles, id)
	return nil
}

func (f *fakeCacheRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.bundles)), nil
}

type fakePlaceRepo struct {
	places []entity.Place
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{places: []entity.Place{
		{City: "Moscow", Code: "MOW", HubRank: 1},
		{City: "Saint Petersburg", Code: "LED", HubRank: 2},
		{City: "Sochi", Code: "AER", HubRank: 3},
		{City: "Yekaterinburg", Code: "SVX", HubRank: 4},
		{City: "Kazan", Code: "KZN", HubRank: 5},
		{City: "Istanbul", Code: "IST"},
	}}
}

func (f *fakePlaceRepo) GetByCity(_ context.Context, city string) (*entity.Place, error) {
	for i := range f.places {
		if f.places[i].City == city {
			return &f.places[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlaceRepo) GetByCode(_ context.Context, code string) (*entity.Place, error) {
	for i := range f.places {
		if f.places[i].Code == code {
			return &f.places[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlaceRepo) Hubs(_ context.Context, limit int) ([]entity.Place, error) {
	var hubs []entity.Place
	for _, p := range f.places {
		if p.HubRank > 0 {
			hubs = append(hubs, p)
		}
	}
	sort.Slice(hubs, func(i, j int) bool { return hubs[i].HubRank < hubs[j].HubRank })
	if len(hubs) > limit {
		hubs = hubs[:limit]
	}
	return hubs, nil
}

type fakeWatchRepo struct {
	entries map[string]*entity.WatchEntry
	nextID  int
	listErr error
}

func newFakeWatchRepo() *fakeWatchRepo {
	return &fakeWatchRepo{entries: make(map[string]*entity.WatchEntry)}
}

func (f *fakeWatchRepo) Create(_ context.Context, watch *entity.WatchEntry) (string, error) {
	f.nextID++
	id := fmt.Sprintf("watch-%d", f.nextID)
	cp := *watch
	f.entries[id] = &cp
	return id, nil
}

func (f *fakeWatchRepo) Get(_ context.Context, id string) (*entity.WatchEntry, error) {
	watch, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *watch
	return &cp, nil
}

func (f *fakeWatchRepo) Update(_ context.Context, id string, watch *entity.WatchEntry) error {
	cp := *watch
	f.entries[id] = &cp
	return nil
}

func (f *fakeWatchRepo) Delete(_ context.Context, _ int64, id string) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeWatchRepo) ListIDs(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]string, 0, len(f.entries))
	for id := range f.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeWatchRepo) ListByUser(_ context.Context, userID int64) (map[string]*entity.WatchEntry, error) {
	out := make(map[string]*entity.WatchEntry)
	for id, watch := range f.entries {
		if watch.UserID == userID {
			cp := *watch
			out[id] = &cp
		}
	}
	return out, nil
}

type sentMessage struct {
	UserID  int64
	Message string
}

type fakeNotifier struct {
	sent []sentMessage
	errs map[int64]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{errs: make(map[int64]error)}
}

func (f *fakeNotifier) Notify(_ context.Context, userID int64, message string) error {
	if err, ok := f.errs[userID]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{userID, message})
	return nil
}
