package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is a delivery address owned by exactly one user.
type ShippingAddress struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	ReceiverName string    `gorm:"column:receiver_name;not null"`
	Phone        *string   `gorm:"column:phone"`
	Mobile       string    `gorm:"column:mobile;not null"`
	Province     string    `gorm:"column:province;not null"`
	City         string    `gorm:"column:city;not null"`
	District     *string   `gorm:"column:district"`
	Address      string    `gorm:"column:address;not null"`
	Zip          *string   `gorm:"column:zip"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
