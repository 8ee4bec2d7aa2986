package repository

import (
	"context"
	"errors"

	"trolley/internal/models"

	"gorm.io/gorm"
)

type RestaurantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	GetActive(ctx context.Context, zone models.Zone) ([]models.Restaurant, error)
	SetOpen(ctx context.Context, id string, isOpen bool) error
	GetMenuCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error)
	GetMenuItems(ctx context.Context, restaurantID string, includeUnavailable bool) ([]models.MenuItem, error)
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, "slug = ? AND is_active = true", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) GetActive(ctx context.Context, zone models.Zone) ([]models.Restaurant, error) {
	q := r.db.WithContext(ctx).Where("is_active = true")
	if zone != "" {
		q = q.Where("zone = ?", zone)
	}
	var restaurants []models.Restaurant
	err := q.Order("name").Find(&restaurants).Error
	return restaurants, err
}

func (r *restaurantRepository) SetOpen(ctx context.Context, id string, isOpen bool) error {
	res := r.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", id).
		Update("is_open", isOpen)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *restaurantRepository) GetMenuCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("display_order").
		Find(&categories).Error
	return categories, err
}

func (r *restaurantRepository) GetMenuItems(ctx context.Context, restaurantID string, includeUnavailable bool) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if !includeUnavailable {
		q = q.Where("is_available = true")
	}
	var items []models.MenuItem
	err := q.Order("display_order").Find(&items).Error
	return items, err
}
