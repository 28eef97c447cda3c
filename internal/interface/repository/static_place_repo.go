package repository

import (
	"context"
	"sort"
	"strings"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"
)

// StaticPlaceRepository serves the place directory from a built-in table.
// Used when no Postgres directory is configured, and in tests.
type StaticPlaceRepository struct {
	byCity map[string]entity.Place
	byCode map[string]entity.Place
	hubs   []entity.Place
}

// staticPlaces is the default directory: metropolitan codes for the
// cities the service most commonly sees. The first five hub ranks form
// the fan-out pool for "everywhere" searches.
var staticPlaces = []entity.Place{
	{City: "Moscow", Code: "MOW", HubRank: 1},
	{City: "Saint Petersburg", Code: "LED", HubRank: 2},
	{City: "Sochi", Code: "AER", HubRank: 3},
	{City: "Yekaterinburg", Code: "SVX", HubRank: 4},
	{City: "Kazan", Code: "KZN", HubRank: 5},
	{City: "Novosibirsk", Code: "OVB"},
	{City: "Kaliningrad", Code: "KGD"},
	{City: "Krasnodar", Code: "KRR"},
	{City: "Ufa", Code: "UFA"},
	{City: "Samara", Code: "KUF"},
	{City: "Istanbul", Code: "IST"},
	{City: "Antalya", Code: "AYT"},
	{City: "Dubai", Code: "DXB"},
	{City: "Yerevan", Code: "EVN"},
	{City: "Tbilisi", Code: "TBS"},
	{City: "Belgrade", Code: "BEG"},
	{City: "Baku", Code: "GYD"},
	{City: "Tashkent", Code: "TAS"},
	{City: "Almaty", Code: "ALA"},
	{City: "Bangkok", Code: "BKK"},
	{City: "Phuket", Code: "HKT"},
}

// NewStaticPlaceRepository creates a place repository over the built-in table.
func NewStaticPlaceRepository() repository.PlaceRepository {
	r := &StaticPlaceRepository{
		byCity: make(map[string]entity.Place, len(staticPlaces)),
		byCode: make(map[string]entity.Place, len(staticPlaces)),
	}
	for _, p := range staticPlaces {
		r.byCity[strings.ToLower(p.City)] = p
		r.byCode[p.Code] = p
		if p.HubRank > 0 {
			r.hubs = append(r.hubs, p)
		}
	}
	sort.Slice(r.hubs, func(i, j int) bool { return r.hubs[i].HubRank < r.hubs[j].HubRank })
	return r
}

// GetByCity finds a place by city name, case-insensitively
func (r *StaticPlaceRepository) GetByCity(_ context.Context, city string) (*entity.Place, error) {
	p, ok := r.byCity[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// GetByCode finds a place by IATA code
func (r *StaticPlaceRepository) GetByCode(_ context.Context, code string) (*entity.Place, error) {
	p, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// Hubs returns the ordered hub pool, capped at limit
func (r *StaticPlaceRepository) Hubs(_ context.Context, limit int) ([]entity.Place, error) {
	if limit <= 0 || limit > len(r.hubs) {
		limit = len(r.hubs)
	}
	out := make([]entity.Place, limit)
	copy(out, r.hubs[:limit])
	return out, nil
}
