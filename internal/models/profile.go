package models

import "time"

type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleRestaurantAdmin UserRole = "restaurant_admin"
	RoleDriver          UserRole = "driver"
	RoleOperator        UserRole = "operator"
)

// Profile is an authenticated identity. RestaurantID is set only for
// restaurant admins; drivers are resolved through the drivers table.
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	Role         UserRole  `json:"role" gorm:"type:varchar(32);not null"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	RestaurantID *string   `json:"restaurant_id" gorm:"type:uuid"`
	TokenHash    []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
