package repository

import (
	"context"
	"errors"
	"time"

	"trolley/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// OrderFilters narrows the operator-facing listing.
type OrderFilters struct {
	Status       models.OrderStatus
	RestaurantID string
	Date         string // ISO date, e.g. "2026-08-29"
}

// OrderRepository persists orders and their line items. Note the deliberate
// absence of any item update/delete primitive: line items are immutable after
// creation. UpdateWhereStatus is the single-row conditional write every state
// transition is built on.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	UpdateWhereStatus(ctx context.Context, id string, expected models.OrderStatus, patch map[string]interface{}) (bool, error)
	GetByRestaurant(ctx context.Context, restaurantID, date string) ([]models.Order, error)
	GetByDriver(ctx context.Context, driverID string, statuses []models.OrderStatus) ([]models.Order, error)
	GetByCustomer(ctx context.Context, customerID string, limit int) ([]models.Order, error)
	GetAll(ctx context.Context, filters OrderFilters) ([]models.Order, error)
	GetStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and all its items in one transaction: either every
// row exists afterwards or none do.
func (r *orderRepository) Create(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

// UpdateWhereStatus applies patch only if the order's status is still the
// expected one at write time. Returns false when no row matched, which callers
// must treat as "someone else got there first", not as an error.
func (r *orderRepository) UpdateWhereStatus(ctx context.Context, id string, expected models.OrderStatus, patch map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(patch)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepository) GetByRestaurant(ctx context.Context, restaurantID, date string) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if date != "" {
		q = q.Where("created_at >= ? AND created_at < ?", date+"T00:00:00Z", date+"T23:59:59.999Z")
	}
	var orders []models.Order
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByDriver(ctx context.Context, driverID string, statuses []models.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Where("driver_id = ?", driverID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var orders []models.Order
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByCustomer(ctx context.Context, customerID string, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetAll(ctx context.Context, filters OrderFilters) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", filters.RestaurantID)
	}
	if filters.Date != "" {
		q = q.Where("created_at >= ? AND created_at < ?", filters.Date+"T00:00:00Z", filters.Date+"T23:59:59.999Z")
	}
	var orders []models.Order
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.StatusPaymentPending, cutoff).
		Find(&orders).Error
	return orders, err
}
