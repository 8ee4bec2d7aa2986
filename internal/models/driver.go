package models

import "time"

// Driver is referenced by orders via driver_id, never owned by them.
type Driver struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProfileID string    `json:"profile_id" gorm:"type:uuid;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Phone     string    `json:"phone"`
	Zone      Zone      `json:"zone" gorm:"type:varchar(32);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
