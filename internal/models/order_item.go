package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a frozen snapshot of a menu item at checkout time. Items are
// created atomically with their order and are never updated or deleted.
type OrderItem struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID              string          `json:"order_id" gorm:"type:uuid;not null;index"`
	MenuItemID           *string         `json:"menu_item_id" gorm:"type:uuid"`
	ItemNameSnapshot     string          `json:"item_name_snapshot" gorm:"not null"`
	ItemPriceSnapshotSZL decimal.Decimal `json:"item_price_snapshot_szl" gorm:"type:numeric(10,2);not null"`
	Quantity             int             `json:"quantity" gorm:"not null"`
	LineTotalSZL         decimal.Decimal `json:"line_total_szl" gorm:"type:numeric(10,2);not null"`
	CreatedAt            time.Time       `json:"created_at"`
}
