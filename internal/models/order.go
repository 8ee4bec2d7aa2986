package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPaymentPending OrderStatus = "payment_pending"
	StatusPlaced         OrderStatus = "placed"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOnTheWay       OrderStatus = "on_the_way"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// statusRank orders statuses by lifecycle progression. Cancelled shares the
// top rank with delivered so a cancellation is never treated as stale.
var statusRank = map[OrderStatus]int{
	StatusPaymentPending: 0,
	StatusPlaced:         1,
	StatusConfirmed:      2,
	StatusPreparing:      3,
	StatusReadyForPickup: 4,
	StatusOnTheWay:       5,
	StatusDelivered:      6,
	StatusCancelled:      6,
}

func (s OrderStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) Rank() int {
	return statusRank[s]
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentSuccess  PaymentStatus = "success"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMTNMomo PaymentMethod = "mtn_momo"
	PaymentCard    PaymentMethod = "card"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMTNMomo || m == PaymentCard
}

// Order is an append-only record: rows are never deleted, monetary fields are
// frozen at creation, and each milestone timestamp is set exactly once.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid"`
	Ref             string          `json:"ref" gorm:"uniqueIndex;not null"`
	RestaurantID    string          `json:"restaurant_id" gorm:"type:uuid;not null;index"`
	CustomerID      *string         `json:"customer_id" gorm:"type:uuid;index"`
	GuestName       *string         `json:"guest_name"`
	DriverID        *string         `json:"driver_id" gorm:"type:uuid;index"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(32);not null;default:'payment_pending';index"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16);not null;default:'pending'"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(16);not null"`
	PaymentRef      *string         `json:"payment_ref"`
	RejectionReason *string         `json:"rejection_reason"`
	DeliveryAddress string          `json:"delivery_address" gorm:"not null"`
	DeliveryPhone   string          `json:"delivery_phone" gorm:"not null"`
	DeliveryZone    Zone            `json:"delivery_zone" gorm:"type:varchar(32);not null"`
	SubtotalSZL     decimal.Decimal `json:"subtotal_szl" gorm:"type:numeric(10,2);not null"`
	DeliveryFeeSZL  decimal.Decimal `json:"delivery_fee_szl" gorm:"type:numeric(10,2);not null"`
	TotalSZL        decimal.Decimal `json:"total_szl" gorm:"type:numeric(10,2);not null"`
	PlacedAt        *time.Time      `json:"placed_at"`
	ConfirmedAt     *time.Time      `json:"confirmed_at"`
	PreparingAt     *time.Time      `json:"preparing_at"`
	ReadyAt         *time.Time      `json:"ready_at"`
	PickedUpAt      *time.Time      `json:"picked_up_at"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
