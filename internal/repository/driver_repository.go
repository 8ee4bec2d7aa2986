package repository

import (
	"context"
	"errors"

	"trolley/internal/models"

	"gorm.io/gorm"
)

type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetByProfileID(ctx context.Context, profileID string) (*models.Driver, error)
	GetActive(ctx context.Context, zone models.Zone) ([]models.Driver, error)
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) GetByProfileID(ctx context.Context, profileID string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).First(&driver, "profile_id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepository) GetActive(ctx context.Context, zone models.Zone) ([]models.Driver, error) {
	q := r.db.WithContext(ctx).Where("is_active = true")
	if zone != "" {
		q = q.Where("zone = ?", zone)
	}
	var drivers []models.Driver
	err := q.Order("name").Find(&drivers).Error
	return drivers, err
}
