package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restaurant has two independent flags: is_open (currently accepting orders)
// and is_active (visible on the platform at all).
type Restaurant struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:uuid"`
	Name                 string          `json:"name" gorm:"not null"`
	Slug                 string          `json:"slug" gorm:"uniqueIndex;not null"`
	Description          *string         `json:"description"`
	CuisineType          string          `json:"cuisine_type"`
	Phone                string          `json:"phone"`
	Address              string          `json:"address"`
	Zone                 Zone            `json:"zone" gorm:"type:varchar(32);not null"`
	IsOpen               bool            `json:"is_open" gorm:"default:true"`
	IsActive             bool            `json:"is_active" gorm:"default:true"`
	MinOrderSZL          decimal.Decimal `json:"min_order_szl" gorm:"type:numeric(10,2);default:0"`
	EstimatedDeliveryMin int             `json:"estimated_delivery_min" gorm:"default:30"`
	EstimatedDeliveryMax int             `json:"estimated_delivery_max" gorm:"default:45"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type MenuCategory struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	RestaurantID string    `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// MenuItem is read at checkout as the price/name source; the order flow never
// mutates it.
type MenuItem struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid"`
	CategoryID   string          `json:"category_id" gorm:"type:uuid;not null;index"`
	RestaurantID string          `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	Name         string          `json:"name" gorm:"not null"`
	Description  *string         `json:"description"`
	PriceSZL     decimal.Decimal `json:"price_szl" gorm:"type:numeric(10,2);not null"`
	IsAvailable  bool            `json:"is_available" gorm:"default:true"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
