package repository

import (
	"context"
	"errors"

	"trolley/internal/models"

	"gorm.io/gorm"
)

type ZoneRepository interface {
	GetByName(ctx context.Context, name models.Zone) (*models.DeliveryZone, error)
	GetActive(ctx context.Context) ([]models.DeliveryZone, error)
}

type zoneRepository struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) GetByName(ctx context.Context, name models.Zone) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	err := r.db.WithContext(ctx).First(&zone, "name = ? AND is_active = true", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepository) GetActive(ctx context.Context) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	err := r.db.WithContext(ctx).Where("is_active = true").Order("name").Find(&zones).Error
	return zones, err
}
