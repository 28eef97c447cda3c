package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormPlaceRepository implements the PlaceRepository interface
type GormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GORM place repository
func NewGormPlaceRepository(db *gorm.DB) repository.PlaceRepository {
	return &GormPlaceRepository{
		db: db,
	}
}

// Places GORM model for database mapping
type Places struct {
	ID        uint           `gorm:"primaryKey"`
	City      string         `gorm:"column:city;unique"`
	Code      string         `gorm:"column:code;unique"`
	HubRank   int            `gorm:"column:hub_rank"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Places) TableName() string {
	return "m_places"
}

// GetByCity finds a place by city name, case-insensitively
func (r *GormPlaceRepository) GetByCity(ctx context.Context, city string) (*entity.Place, error) {
	var place Places
	result := r.db.WithContext(ctx).Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(city))).First(&place)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}
	return toPlaceEntity(&place), nil
}

// GetByCode finds a place by IATA code
func (r *GormPlaceRepository) GetByCode(ctx context.Context, code string) (*entity.Place, error) {
	var place Places
	result := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&place)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}
	return toPlaceEntity(&place), nil
}

// Hubs returns the ordered hub pool, capped at limit
func (r *GormPlaceRepository) Hubs(ctx context.Context, limit int) ([]entity.Place, error) {
	var rows []Places
	result := r.db.WithContext(ctx).
		Where("hub_rank > 0").
		Order("hub_rank asc").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	places := make([]entity.Place, 0, len(rows))
	for i := range rows {
		places = append(places, *toPlaceEntity(&rows[i]))
	}
	return places, nil
}

func toPlaceEntity(p *Places) *entity.Place {
	return &entity.Place{
		ID:        p.ID,
		City:      p.City,
		Code:      p.Code,
		HubRank:   p.HubRank,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
