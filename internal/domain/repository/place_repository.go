package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// PlaceRepository resolves city names and IATA codes and provides the
// fixed ordered hub pool used for "everywhere" fan-out.
type PlaceRepository interface {
	GetByCity(ctx context.Context, city string) (*entity.Place, error)
	GetByCode(ctx context.Context, code string) (*entity.Place, error)
	Hubs(ctx context.Context, limit int) ([]entity.Place, error)
}
