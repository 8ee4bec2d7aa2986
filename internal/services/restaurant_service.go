package services

import (
	"context"
	"errors"

	"trolley/internal/models"
	"trolley/internal/repository"
)

type MenuCategoryWithItems struct {
	models.MenuCategory
	Items []models.MenuItem `json:"items"`
}

// RestaurantService covers the read surface checkout depends on plus the
// operational open/closed toggle. Menu management itself lives elsewhere.
type RestaurantService interface {
	GetRestaurants(ctx context.Context, zone models.Zone) ([]models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]MenuCategoryWithItems, error)
	GetZones(ctx context.Context) ([]models.DeliveryZone, error)
	SetOpen(ctx context.Context, actor *Actor, isOpen bool) error
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	zoneRepo       repository.ZoneRepository
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository, zoneRepo repository.ZoneRepository) RestaurantService {
	return &restaurantService{restaurantRepo: restaurantRepo, zoneRepo: zoneRepo}
}

func (s *restaurantService) GetRestaurants(ctx context.Context, zone models.Zone) ([]models.Restaurant, error) {
	return s.restaurantRepo.GetActive(ctx, zone)
}

func (s *restaurantService) GetMenu(ctx context.Context, restaurantID string) ([]MenuCategoryWithItems, error) {
	if _, err := s.restaurantRepo.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	categories, err := s.restaurantRepo.GetMenuCategories(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	items, err := s.restaurantRepo.GetMenuItems(ctx, restaurantID, false)
	if err != nil {
		return nil, err
	}

	menu := make([]MenuCategoryWithItems, 0, len(categories))
	for _, category := range categories {
		entry := MenuCategoryWithItems{MenuCategory: category}
		for _, item := range items {
			if item.CategoryID == category.ID {
				entry.Items = append(entry.Items, item)
			}
		}
		menu = append(menu, entry)
	}
	return menu, nil
}

func (s *restaurantService) GetZones(ctx context.Context) ([]models.DeliveryZone, error) {
	return s.zoneRepo.GetActive(ctx)
}

func (s *restaurantService) SetOpen(ctx context.Context, actor *Actor, isOpen bool) error {
	if actor.Role != models.RoleRestaurantAdmin || actor.RestaurantID == "" {
		return ErrForbidden
	}
	err := s.restaurantRepo.SetOpen(ctx, actor.RestaurantID, isOpen)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
