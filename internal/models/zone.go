package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Zone string

const (
	ZoneMbabane Zone = "Mbabane"
	ZoneManzini Zone = "Manzini"
	ZoneOther   Zone = "Other"
)

func (z Zone) IsValid() bool {
	return z == ZoneMbabane || z == ZoneManzini || z == ZoneOther
}

// DeliveryZone carries the flat delivery fee charged at checkout. Orders
// snapshot the fee, so changing it here never touches existing orders.
type DeliveryZone struct {
	ID         string          `json:"id" gorm:"primaryKey;type:uuid"`
	Name       Zone            `json:"name" gorm:"type:varchar(32);uniqueIndex;not null"`
	FlatFeeSZL decimal.Decimal `json:"flat_fee_szl" gorm:"type:numeric(10,2);not null"`
	IsActive   bool            `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
